package provider

import "context"

// Processor receives verified callbacks for the transaction types it handles.
// An empty Type matches every transaction type.
type Processor interface {
	Type() string
	ProcessReturnURL(ctx context.Context, response *PaymentResponse) error
	ProcessIPN(ctx context.Context, response *PaymentResponse) error
}

// NopProcessor can be embedded to implement only the callbacks a processor cares about
type NopProcessor struct{}

func (NopProcessor) Type() string { return "" }

func (NopProcessor) ProcessReturnURL(context.Context, *PaymentResponse) error { return nil }

func (NopProcessor) ProcessIPN(context.Context, *PaymentResponse) error { return nil }

// Matches reports whether processor p should receive callbacks of transactionType
func Matches(p Processor, transactionType string) bool {
	return p.Type() == "" || p.Type() == transactionType
}
