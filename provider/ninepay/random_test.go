package ninepay

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(32, "ab")
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.Regexp(t, `^[ab]+$`, s)

	_, err = GenerateRandomString(0, "ab")
	assert.Error(t, err)

	_, err = GenerateRandomString(4, "")
	assert.Error(t, err)
}

func TestGenerateRequestCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{12}$`)
	seen := make(map[string]bool)

	for range 100 {
		code := GenerateRequestCode()
		assert.Regexp(t, pattern, code)
		assert.False(t, seen[code], "duplicate request code %s", code)
		seen[code] = true
	}
}

func TestNewPaymentRequest(t *testing.T) {
	req := NewPaymentRequest()
	assert.Len(t, req.RequestCode, 12)
	assert.True(t, req.Amount.IsZero())
}
