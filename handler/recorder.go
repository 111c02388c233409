package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mstgnz/ninepay/provider"
)

const (
	returnKeyPrefix = "ReturnURL-"
	ipnKeyPrefix    = "IPN-"
	recordField     = "response"

	// RecordingTTL is how long recorded callback responses are kept
	RecordingTTL = 24 * time.Hour
)

// RecordingProcessor keeps the last return and IPN responses per request code
// so they can be served next to the live inquiry.
type RecordingProcessor struct {
	provider.NopProcessor

	transactionType string
	store           provider.CorrelationStore
}

// NewRecordingProcessor creates a processor for transactionType ("" matches every type)
func NewRecordingProcessor(transactionType string, store provider.CorrelationStore) *RecordingProcessor {
	return &RecordingProcessor{
		transactionType: transactionType,
		store:           store,
	}
}

func (p *RecordingProcessor) Type() string {
	return p.transactionType
}

func (p *RecordingProcessor) ProcessReturnURL(ctx context.Context, response *provider.PaymentResponse) error {
	return p.record(ctx, returnKeyPrefix, response)
}

func (p *RecordingProcessor) ProcessIPN(ctx context.Context, response *provider.PaymentResponse) error {
	return p.record(ctx, ipnKeyPrefix, response)
}

// ReturnResponse returns the last recorded return response, or nil when none is stored
func (p *RecordingProcessor) ReturnResponse(ctx context.Context, requestCode string) (*provider.PaymentResponse, error) {
	return p.load(ctx, returnKeyPrefix, requestCode)
}

// IPNResponse returns the last recorded IPN response, or nil when none is stored
func (p *RecordingProcessor) IPNResponse(ctx context.Context, requestCode string) (*provider.PaymentResponse, error) {
	return p.load(ctx, ipnKeyPrefix, requestCode)
}

func (p *RecordingProcessor) record(ctx context.Context, prefix string, response *provider.PaymentResponse) error {
	if response == nil {
		return nil
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}

	return p.store.Set(ctx, prefix+response.RequestCode, map[string]string{recordField: string(data)}, RecordingTTL)
}

func (p *RecordingProcessor) load(ctx context.Context, prefix, requestCode string) (*provider.PaymentResponse, error) {
	values, err := p.store.Get(ctx, prefix+requestCode)
	if errors.Is(err, provider.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var response provider.PaymentResponse
	if err := json.Unmarshal([]byte(values[recordField]), &response); err != nil {
		return nil, fmt.Errorf("decoding recorded response: %w", err)
	}

	return &response, nil
}
