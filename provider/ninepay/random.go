package ninepay

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/mstgnz/ninepay/provider"
)

const (
	requestCodeLength  = 12
	requestCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateRandomString returns length characters drawn uniformly from charset
func GenerateRandomString(length int, charset string) (string, error) {
	if length <= 0 || charset == "" {
		return "", errors.New("ninepay: length and charset must be non-empty")
	}

	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateRequestCode returns a 12 character [A-Z0-9] request code
func GenerateRequestCode() string {
	code, err := GenerateRandomString(requestCodeLength, requestCodeCharset)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return code
}

// NewPaymentRequest returns a request with a freshly generated request code
func NewPaymentRequest() provider.PaymentRequest {
	return provider.PaymentRequest{RequestCode: GenerateRequestCode()}
}
