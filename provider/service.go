package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/mstgnz/ninepay/infra/logger"
	"github.com/mstgnz/ninepay/infra/metrics"
)

// Callback sources
const (
	SourceReturn = "return"
	SourceIPN    = "ipn"
)

// PaymentService drives a gateway and dispatches verified callbacks to processors
type PaymentService struct {
	gateway    Gateway
	processors *ProcessorRegistry
	logger     PaymentLogger
}

// NewPaymentService creates a new payment service. A nil registry or logger is replaced by an empty one.
func NewPaymentService(gateway Gateway, processors *ProcessorRegistry, paymentLogger PaymentLogger) *PaymentService {
	if processors == nil {
		processors = NewProcessorRegistry()
	}
	if paymentLogger == nil {
		paymentLogger = NopPaymentLogger{}
	}

	return &PaymentService{
		gateway:    gateway,
		processors: processors,
		logger:     paymentLogger,
	}
}

// CreatePaymentLink creates a signed payment link through the gateway
func (s *PaymentService) CreatePaymentLink(ctx context.Context, transactionType string, request PaymentRequest, returnURL string) (string, error) {
	startTime := time.Now()

	link, err := s.gateway.CreatePaymentLink(ctx, transactionType, request, returnURL)

	s.logEvent(ctx, GatewayEvent{
		Event:        EventCreateLink,
		Type:         transactionType,
		RequestCode:  request.RequestCode,
		OrderCode:    request.OrderCode,
		Amount:       request.Amount.String(),
		ProcessingMs: time.Since(startTime).Milliseconds(),
		Err:          err,
	})

	if err != nil {
		return "", err
	}

	metrics.PaymentLinks.WithLabelValues(transactionType).Inc()
	return link, nil
}

// HandleReturn processes a browser return callback. Every matching processor
// runs in registration order and the first processor error is returned.
func (s *PaymentService) HandleReturn(ctx context.Context, params map[string]string) (*CallbackResult, error) {
	result, err := s.processCallback(ctx, SourceReturn, params)
	if err != nil {
		return nil, err
	}

	for _, p := range s.processors.Matching(result.Type) {
		if err := p.ProcessReturnURL(ctx, result.Response); err != nil {
			return result, fmt.Errorf("return processor for type %q: %w", p.Type(), err)
		}
	}

	return result, nil
}

// HandleIPN processes a server-to-server notification. Processor errors are
// logged and do not stop the remaining processors.
func (s *PaymentService) HandleIPN(ctx context.Context, params map[string]string) (*CallbackResult, error) {
	result, err := s.processCallback(ctx, SourceIPN, params)
	if err != nil {
		return nil, err
	}

	for _, p := range s.processors.Matching(result.Type) {
		if err := p.ProcessIPN(ctx, result.Response); err != nil {
			logger.Error("IPN processor failed", err, logger.LogContext{
				Provider:    "ninepay",
				RequestCode: result.Response.RequestCode,
				Fields: map[string]any{
					"processor_type":   p.Type(),
					"transaction_type": result.Type,
				},
			})
		}
	}

	return result, nil
}

// QueryStatus asks the gateway for the live state of a transaction
func (s *PaymentService) QueryStatus(ctx context.Context, requestCode string) (*InquiryResult, error) {
	startTime := time.Now()

	result, err := s.gateway.QueryStatus(ctx, requestCode)

	event := GatewayEvent{
		Event:        EventInquiry,
		RequestCode:  requestCode,
		ProcessingMs: time.Since(startTime).Milliseconds(),
		Err:          err,
	}
	if err != nil {
		metrics.Inquiries.WithLabelValues("error").Inc()
	} else {
		metrics.Inquiries.WithLabelValues(result.Result.String()).Inc()
		event.Result = result.Result.String()
		event.Fields = result.Data
	}
	s.logEvent(ctx, event)

	return result, err
}

func (s *PaymentService) processCallback(ctx context.Context, source string, params map[string]string) (*CallbackResult, error) {
	startTime := time.Now()

	result, err := s.gateway.ProcessCallback(ctx, params)
	if err != nil {
		metrics.CallbackRejections.WithLabelValues(source, ErrorCode(err)).Inc()
		logger.Warn("Callback rejected", logger.LogContext{
			Provider: "ninepay",
			Fields: map[string]any{
				"source": source,
				"reason": ErrorCode(err),
				"error":  err.Error(),
			},
		})
		s.logEvent(ctx, GatewayEvent{
			Event:        source,
			ProcessingMs: time.Since(startTime).Milliseconds(),
			Err:          err,
		})
		return nil, err
	}

	metrics.Callbacks.WithLabelValues(source, result.Response.Result.String()).Inc()
	s.logEvent(ctx, GatewayEvent{
		Event:        source,
		Type:         result.Type,
		RequestCode:  result.Response.RequestCode,
		OrderCode:    result.Response.OrderCode,
		Result:       result.Response.Result.String(),
		Amount:       result.Response.Amount.String(),
		ProcessingMs: time.Since(startTime).Milliseconds(),
		Fields:       result.Response.GatewayFields,
	})

	return result, nil
}

// logEvent records an event, downgrading logging failures to warnings
func (s *PaymentService) logEvent(ctx context.Context, event GatewayEvent) {
	if err := s.logger.LogEvent(ctx, event); err != nil {
		logger.Warn("Failed to log gateway event", logger.LogContext{
			Provider:    "ninepay",
			RequestCode: event.RequestCode,
			Fields: map[string]any{
				"event": event.Event,
				"error": err.Error(),
			},
		})
	}
}
