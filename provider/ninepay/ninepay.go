package ninepay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mstgnz/ninepay/infra/logger"
	"github.com/mstgnz/ninepay/provider"
	"github.com/shopspring/decimal"
)

const (
	// API URLs
	defaultAPIURL = "https://sand-payment.9pay.vn"

	// Local routes
	defaultReturnURL = "/ninepay/return"
	defaultIPNURL    = "/ninepay/ipn"

	// API Endpoints
	endpointCreatePayment = "/payments/create"
	endpointPortal        = "/portal"
	endpointInquiry       = "/v2/payments/%s/inquire"

	// 9Pay status codes
	statusSuccess = "5"
	errorCodeNone = "000"

	// Callback fields
	fieldResult    = "result"
	fieldChecksum  = "checksum"
	fieldStatus    = "status"
	fieldErrorCode = "error_code"
	fieldInvoiceNo = "invoice_no"
	fieldDesc      = "description"
	fieldAmount    = "amount"

	// CorrelationTTL is how long link data is kept for callback reconciliation
	CorrelationTTL = 24 * time.Hour

	defaultTimeout = 30 * time.Second
	providerName   = "ninepay"
)

var _ provider.Gateway = (*NinePayProvider)(nil)

// NinePayProvider implements provider.Gateway for 9Pay
type NinePayProvider struct {
	opts     Options
	store    provider.CorrelationStore
	resolver provider.URLResolver
	client   *provider.GatewayHTTPClient
	now      func() time.Time
}

// NewProvider creates a 9Pay gateway. Missing credentials fail with provider.ErrConfiguration.
func NewProvider(opts Options, store provider.CorrelationStore, resolver provider.URLResolver) (*NinePayProvider, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("ninepay: correlation store is required: %w", provider.ErrConfiguration)
	}
	if resolver == nil {
		return nil, fmt.Errorf("ninepay: URL resolver is required: %w", provider.ErrConfiguration)
	}

	return &NinePayProvider{
		opts:     opts,
		store:    store,
		resolver: resolver,
		client:   provider.NewGatewayHTTPClient(provider.CreateHTTPClientConfig(opts.APIURL, opts.Timeout)),
		now:      time.Now,
	}, nil
}

// Options returns the effective configuration
func (p *NinePayProvider) Options() Options {
	return p.opts
}

// SetClock replaces the time source used for request timestamps
func (p *NinePayProvider) SetClock(now func() time.Time) {
	p.now = now
}

// CreatePaymentLink signs the request, stores its correlation record for
// CorrelationTTL and returns the portal URL the customer must be redirected to.
func (p *NinePayProvider) CreatePaymentLink(ctx context.Context, transactionType string, request provider.PaymentRequest, returnURL string) (string, error) {
	if strings.TrimSpace(request.RequestCode) == "" {
		return "", fmt.Errorf("ninepay: requestCode is required: %w", provider.ErrInvalidRequest)
	}
	if request.Amount.IsNegative() {
		return "", fmt.Errorf("ninepay: amount must not be negative: %w", provider.ErrInvalidRequest)
	}

	gatewayReturnURL, err := p.resolver.AbsoluteURL(ctx, p.opts.ReturnURL)
	if err != nil {
		return "", fmt.Errorf("ninepay: resolving return URL: %w", err)
	}

	now := p.now()
	builder := NewRequestBuilder(p.opts.APIURL)
	builder.SetClock(func() time.Time { return now })

	builder.AddRequestData("merchantKey", p.opts.MerchantKey)
	builder.AddRequestData("time", Timestamp(now))
	builder.AddRequestData("return_url", gatewayReturnURL)
	builder.AddRequestData(fieldInvoiceNo, request.RequestCode)
	builder.AddRequestData(fieldDesc, request.OrderCode)
	builder.AddRequestData(fieldAmount, request.Amount.StringFixed(0))

	for key, value := range request.GatewayFields {
		builder.AddRequestData(key, value)
	}

	paymentURL, err := builder.CreateRequestURL(p.opts.SecretKey)
	if err != nil {
		return "", fmt.Errorf("ninepay: %w", err)
	}

	record := encodeCorrelation(provider.CorrelationRecord{
		TransactionType: transactionType,
		ReturnURL:       returnURL,
		CustomFields:    request.CustomFields,
	})
	if err := p.store.Set(ctx, correlationKey(request.RequestCode), record, CorrelationTTL); err != nil {
		return "", fmt.Errorf("ninepay: storing correlation record: %w", err)
	}

	return paymentURL, nil
}

// ProcessCallback verifies the result/checksum pair from a return or IPN
// callback, derives the transaction result and merges the stored correlation data.
func (p *NinePayProvider) ProcessCallback(ctx context.Context, params map[string]string) (*provider.CallbackResult, error) {
	builder := NewRequestBuilder(p.opts.APIURL)

	verified, err := builder.ValidateAndDecode(params[fieldResult], params[fieldChecksum], p.opts.ChecksumKey, p.opts.LenientChecksum)
	if err != nil {
		return nil, fmt.Errorf("ninepay: %w", err)
	}

	requestCode := builder.ResponseData(fieldInvoiceNo)
	if !verified {
		logger.Warn("ninepay: accepting callback with checksum mismatch", logger.LogContext{
			Provider:    providerName,
			RequestCode: requestCode,
		})
	}

	// unparsable amounts are reported as zero
	amount, err := decimal.NewFromString(builder.ResponseData(fieldAmount))
	if err != nil {
		amount = decimal.Zero
	}

	stored, err := p.store.Get(ctx, correlationKey(requestCode))
	if errors.Is(err, provider.ErrNotFound) {
		return nil, fmt.Errorf("ninepay: request code %q: %w", requestCode, provider.ErrUnknownTransaction)
	}
	if err != nil {
		return nil, fmt.Errorf("ninepay: reading correlation record: %w", err)
	}
	record := decodeCorrelation(stored)

	response := &provider.PaymentResponse{
		Result:        DeriveResult(builder.ResponseData(fieldStatus), builder.ResponseData(fieldErrorCode), p.opts.PendingStatuses),
		RequestCode:   requestCode,
		OrderCode:     builder.ResponseData(fieldDesc),
		Amount:        amount,
		GatewayFields: builder.Result(),
		CustomFields:  record.CustomFields,
	}

	return &provider.CallbackResult{
		Type:      record.TransactionType,
		Response:  response,
		ReturnURL: record.ReturnURL,
	}, nil
}

// QueryStatus sends a signed inquiry for requestCode. Non-2xx answers are
// returned as *provider.HTTPError and never retried.
func (p *NinePayProvider) QueryStatus(ctx context.Context, requestCode string) (*provider.InquiryResult, error) {
	if strings.TrimSpace(requestCode) == "" {
		return nil, fmt.Errorf("ninepay: requestCode is required: %w", provider.ErrInvalidRequest)
	}

	path := fmt.Sprintf(endpointInquiry, url.PathEscape(requestCode))
	timestamp := Timestamp(p.now())
	signature := Sign(BuildMessage(p.opts.APIURL, http.MethodGet, path, "", timestamp), p.opts.SecretKey)

	resp, err := p.client.Do(ctx, &provider.HTTPRequest{
		Method:   http.MethodGet,
		Endpoint: path,
		Headers: map[string]string{
			"Date":          timestamp,
			"Authorization": authorizationHeader(p.opts.MerchantKey, signature),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ninepay: inquiry for %q failed: %w", requestCode, err)
	}

	data, err := parseObject(bytes.TrimSpace(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("ninepay: decoding inquiry response: %w: %w", provider.ErrGatewayUnavailable, err)
	}

	return &provider.InquiryResult{
		Result: DeriveResult(data[fieldStatus], data[fieldErrorCode], p.opts.PendingStatuses),
		Data:   data,
	}, nil
}

func authorizationHeader(merchantKey, signature string) string {
	return "Signature Algorithm=HS256,Credential=" + merchantKey + ",SignedHeaders=,Signature=" + signature
}
