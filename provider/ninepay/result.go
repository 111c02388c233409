package ninepay

import (
	"slices"

	"github.com/mstgnz/ninepay/provider"
)

// DeriveResult maps a gateway status and error code to a tri-state result.
// Success is status 5 with error code 000. Statuses listed in pending are
// Pending. Everything else is Failure.
func DeriveResult(status, errorCode string, pending []string) provider.Result {
	switch {
	case status == statusSuccess && errorCode == errorCodeNone:
		return provider.ResultSuccess
	case status != "" && slices.Contains(pending, status):
		return provider.ResultPending
	default:
		return provider.ResultFailure
	}
}
