// Package provider holds the gateway independent part of the payment integration.
//
// # Core Concepts
//
//   - Gateway: creates payment links, verifies callbacks and queries transaction status
//   - PaymentService: drives a Gateway, records metrics and audit events, and
//     dispatches verified callbacks to processors
//   - Processor: application code reacting to return and IPN callbacks, selected by
//     transaction type ("" matches every type)
//   - CorrelationStore: TTL key/value store keeping link data until the callback arrives
//   - Result: the tri-state outcome, Pending, Success or Failure
//
// # Processors
//
// Embed NopProcessor to implement only the callbacks you care about:
//
//	type orderProcessor struct {
//	    provider.NopProcessor
//	}
//
//	func (orderProcessor) Type() string { return "order" }
//
//	func (orderProcessor) ProcessIPN(ctx context.Context, r *provider.PaymentResponse) error {
//	    return markPaid(ctx, r.RequestCode, r.Result)
//	}
//
// Return callbacks stop at the first processor error. IPN callbacks log processor
// errors and keep going, since the gateway must always receive 200.
//
// # Errors
//
// Operations return wrapped sentinels so callers can branch with errors.Is:
//
//	ErrConfiguration         missing or invalid gateway settings
//	ErrInvalidRequest        rejected before contacting the gateway
//	ErrUnverifiableCallback  checksum mismatch or malformed payload
//	ErrUnknownTransaction    no correlation record, or it expired
//	ErrGatewayUnavailable    transport failure or non-2xx answer (see HTTPError)
//
// # Correlation Stores
//
// MemoryStore is an in-process store with per-entry TTL. A bounded MemoryStore
// rejects new records with ErrStoreFull rather than dropping live ones. Redis and SQLite backed
// stores live in infra/store.
package provider
