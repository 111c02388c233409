package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when gateway options are missing or malformed.
	ErrConfiguration = errors.New("invalid gateway configuration")

	// ErrInvalidRequest is returned for payment requests the gateway cannot accept.
	ErrInvalidRequest = errors.New("invalid payment request")

	// ErrUnverifiableCallback is returned when a callback payload fails checksum
	// verification or cannot be decoded.
	ErrUnverifiableCallback = errors.New("unverifiable callback")

	// ErrUnknownTransaction is returned when no correlation record exists for a
	// callback's request code, either because it never existed or because it expired.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrGatewayUnavailable wraps transport failures and non-2xx answers from the gateway.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrNotFound is returned by correlation stores for missing or expired keys.
	ErrNotFound = errors.New("correlation record not found")

	// ErrStoreFull is returned by a bounded store that holds no expired entry to make room.
	ErrStoreFull = errors.New("correlation store is full")
)

// HTTPError carries a non-2xx gateway answer with its body intact.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrGatewayUnavailable) match any HTTPError.
func (e *HTTPError) Unwrap() error {
	return ErrGatewayUnavailable
}
