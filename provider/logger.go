package provider

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/ninepay/infra/opensearch"
)

// Gateway event names
const (
	EventCreateLink = "create_link"
	EventReturn     = "return"
	EventIPN        = "ipn"
	EventInquiry    = "inquiry"
)

// GatewayEvent is one gateway interaction recorded for auditing
type GatewayEvent struct {
	Event        string
	Type         string
	RequestCode  string
	OrderCode    string
	Result       string
	Amount       string
	ProcessingMs int64
	Fields       map[string]string
	Err          error
}

// PaymentLogger records gateway interactions
type PaymentLogger interface {
	LogEvent(ctx context.Context, event GatewayEvent) error
}

// NopPaymentLogger discards every event
type NopPaymentLogger struct{}

func (NopPaymentLogger) LogEvent(context.Context, GatewayEvent) error { return nil }

// OpenSearchPaymentLogger indexes gateway events through an OpenSearch logger
type OpenSearchPaymentLogger struct {
	logger *opensearch.Logger
}

// NewOpenSearchPaymentLogger creates a PaymentLogger backed by OpenSearch
func NewOpenSearchPaymentLogger(logger *opensearch.Logger) *OpenSearchPaymentLogger {
	return &OpenSearchPaymentLogger{logger: logger}
}

// LogEvent indexes event together with the request ID and client IP found in ctx
func (l *OpenSearchPaymentLogger) LogEvent(ctx context.Context, event GatewayEvent) error {
	entry := opensearch.GatewayLog{
		Timestamp:    time.Now().UTC(),
		Event:        event.Event,
		Type:         event.Type,
		RequestCode:  event.RequestCode,
		OrderCode:    event.OrderCode,
		Result:       event.Result,
		Amount:       event.Amount,
		RequestID:    middleware.GetReqID(ctx),
		ProcessingMs: event.ProcessingMs,
		Fields:       event.Fields,
	}

	if r, ok := RequestFromContext(ctx); ok {
		entry.ClientIP = r.RemoteAddr
	}

	if event.Err != nil {
		entry.Error = &opensearch.ErrorInfo{
			Code:    ErrorCode(event.Err),
			Message: event.Err.Error(),
		}
	}

	return l.logger.LogGatewayEvent(ctx, entry)
}

// ErrorCode maps an error to a short, stable reason used in logs and metrics
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnverifiableCallback):
		return "unverifiable"
	case errors.Is(err, ErrUnknownTransaction):
		return "unknown_transaction"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrGatewayUnavailable):
		return "gateway_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
