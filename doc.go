// Package ninepay is a 9Pay payment gateway integration: a Go library plus a small
// HTTP service that creates signed payment links and turns the gateway's
// callbacks into verified, tri-state payment results.
//
// # Overview
//
// The payment flow follows this pattern:
//
//	┌─────────────────┐  POST /v1/payments  ┌─────────────────┐   portal link   ┌─────────────────┐
//	│                 │────────────────────►│                 │────────────────►│                 │
//	│   Your App      │                     │    ninepay      │                 │      9Pay       │
//	│                 │◄────────────────────│                 │◄────────────────│                 │
//	└─────────────────┘  redirect + result  └─────────────────┘  return / IPN   └─────────────────┘
//
//  1. The application asks for a payment link with a merchant chosen request code.
//  2. ninepay signs the request with HMAC-SHA256, stores a correlation record for one
//     day and returns the 9Pay portal URL.
//  3. The customer pays on the portal. 9Pay redirects the browser to the return URL and
//     posts an IPN, both carrying a base64 encoded result and a SHA-256 checksum.
//  4. ninepay verifies the checksum, derives Success, Failure or Pending, merges the
//     stored correlation data and hands the result to every matching processor.
//  5. The browser is redirected to the return URL the application gave in step 1.
//
// # Packages
//
//   - provider: gateway independent types, PaymentService, processors and correlation stores
//   - provider/ninepay: the 9Pay gateway (signing, payload codec, callbacks, inquiry)
//   - handler, router: the HTTP surface
//   - infra/store: Redis and SQLite correlation stores
//   - infra/config, infra/logger, infra/opensearch, infra/metrics, infra/middle: ambient services
//
// # Library Usage
//
//	store := provider.NewMemoryStore(10000)
//	gateway, err := ninepay.NewProvider(ninepay.Options{
//	    MerchantKey: os.Getenv("NINEPAY_MERCHANT_KEY"),
//	    SecretKey:   os.Getenv("NINEPAY_SECRET_KEY"),
//	    ChecksumKey: os.Getenv("NINEPAY_CHECKSUM_KEY"),
//	}, store, provider.StaticURLResolver{BaseURL: "https://shop.example"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service := provider.NewPaymentService(gateway, provider.NewProcessorRegistry(myProcessor), nil)
//	link, err := service.CreatePaymentLink(ctx, "order", request, "https://shop.example/orders/42")
//
// # Running the Service
//
//	cp .env.example .env
//	go run ./cmd
//
// Every setting is an environment variable, .env.example lists them with their defaults.
package ninepay
