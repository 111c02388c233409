// Package handler provides the HTTP handlers of the ninepay service.
//
// The handlers bridge the HTTP layer with provider.PaymentService. They parse
// requests, apply a 30 second deadline and map service errors to status codes.
//
// # Payment Handler
//
// The PaymentHandler serves the payment API and the two gateway callbacks:
//
//	paymentHandler := handler.NewPaymentHandler(paymentService, validate, recorder)
//
//	// API (authenticated)
//	r.Post("/v1/payments", paymentHandler.CreatePaymentLink)
//	r.Get("/v1/payments/{requestCode}", paymentHandler.QueryStatus)
//
//	// Gateway callbacks (public)
//	r.Get("/ninepay/return", paymentHandler.HandleReturn)
//	r.Post("/ninepay/ipn", paymentHandler.HandleIPN)
//
// Creating a link:
//
//	POST /v1/payments?type=order&returnUrl=https://shop.example/orders/42
//	Authorization: Bearer your-api-key
//	Content-Type: application/json
//
//	{
//	  "requestCode": "8H2K4M9Q1Z0A",
//	  "orderCode": "ORDER-42",
//	  "amount": "150000",
//	  "customFields": {"customerId": "17"}
//	}
//
// The return callback redirects the browser to the returnUrl given at link
// creation once every matching processor has run. The IPN callback always
// answers 200 with an empty body; failures are only logged.
//
// # Recording Processor
//
// RecordingProcessor is a wildcard processor that stores the last return and
// IPN responses per request code for RecordingTTL. When configured, QueryStatus
// returns them next to the live inquiry.
//
// # Error Handling
//
// Errors are written with infra/response envelopes:
//
//   - 400 Bad Request: invalid body, empty requestCode or unverifiable callback
//   - 404 Not Found: callback for an unknown or expired transaction
//   - 502 Bad Gateway: the gateway answered with a non-2xx status or could not be reached
//   - 504 Gateway Timeout: the request deadline expired
//   - 500 Internal Server Error: anything else, including processor failures on return
package handler
