package ninepay

import (
	"testing"

	"github.com/mstgnz/ninepay/provider"
	"github.com/stretchr/testify/assert"
)

func TestDeriveResult(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		errorCode string
		pending   []string
		want      provider.Result
	}{
		{"success", "5", "000", nil, provider.ResultSuccess},
		{"success status with error code", "5", "001", nil, provider.ResultFailure},
		{"failed status", "6", "000", nil, provider.ResultFailure},
		{"missing fields", "", "", nil, provider.ResultFailure},
		{"pending status not configured", "2", "000", nil, provider.ResultFailure},
		{"configured pending status", "2", "", []string{"2", "3"}, provider.ResultPending},
		{"success wins over pending list", "5", "000", []string{"5"}, provider.ResultSuccess},
		{"empty status never pending", "", "", []string{""}, provider.ResultFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveResult(tt.status, tt.errorCode, tt.pending))
		})
	}
}
