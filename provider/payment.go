package provider

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Result is the reconciled outcome of a transaction
type Result int

const (
	ResultPending Result = iota
	ResultSuccess
	ResultFailure
)

// String returns the lowercase name used in logs, metrics and JSON
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return "pending"
	}
}

// MarshalJSON encodes the result by name
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a result written by MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "success":
		*r = ResultSuccess
	case "failure":
		*r = ResultFailure
	default:
		*r = ResultPending
	}
	return nil
}

// PaymentRequest represents a merchant's request to open a payment at the gateway
type PaymentRequest struct {
	// RequestCode is the merchant-unique transaction reference sent as invoice_no
	RequestCode string `json:"requestCode" validate:"required"`

	// OrderCode is the human-readable order reference sent as description
	OrderCode string `json:"orderCode"`

	// Amount is sent to the gateway rounded to a whole number
	Amount decimal.Decimal `json:"amount"`

	// GatewayFields are merged into the outbound parameters and may override defaults
	GatewayFields map[string]string `json:"gatewayFields,omitempty"`

	// CustomFields are kept locally and handed back on callback
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// PaymentResponse represents a verified gateway callback merged with local correlation data
type PaymentResponse struct {
	Result        Result            `json:"result"`
	RequestCode   string            `json:"requestCode"`
	OrderCode     string            `json:"orderCode"`
	Amount        decimal.Decimal   `json:"amount"`
	GatewayFields map[string]string `json:"gatewayFields"`
	CustomFields  map[string]string `json:"customFields"`
}

// CallbackResult is what a processed callback yields for processor dispatch and redirect
type CallbackResult struct {
	Type      string           `json:"type"`
	Response  *PaymentResponse `json:"response"`
	ReturnURL string           `json:"returnUrl"`
}

// InquiryResult is the live status reported by the gateway's inquiry endpoint
type InquiryResult struct {
	Result Result            `json:"result"`
	Data   map[string]string `json:"data"`
}

// CorrelationRecord holds the data kept between link creation and callback
type CorrelationRecord struct {
	TransactionType string
	ReturnURL       string
	CustomFields    map[string]string
}

// Gateway is implemented by payment gateway integrations
type Gateway interface {
	// CreatePaymentLink stores correlation data and returns a signed redirect URL
	CreatePaymentLink(ctx context.Context, transactionType string, request PaymentRequest, returnURL string) (string, error)

	// ProcessCallback verifies and decodes callback parameters and merges the stored correlation data
	ProcessCallback(ctx context.Context, params map[string]string) (*CallbackResult, error)

	// QueryStatus asks the gateway for the live state of a transaction
	QueryStatus(ctx context.Context, requestCode string) (*InquiryResult, error)
}
