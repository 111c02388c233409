package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_String(t *testing.T) {
	assert.Equal(t, "pending", ResultPending.String())
	assert.Equal(t, "success", ResultSuccess.String())
	assert.Equal(t, "failure", ResultFailure.String())
	assert.Equal(t, "pending", Result(42).String())
}

func TestResult_JSON(t *testing.T) {
	response := PaymentResponse{
		Result:      ResultSuccess,
		RequestCode: "ABC123",
		Amount:      decimal.NewFromInt(100000),
	}

	raw, err := json.Marshal(response)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"result":"success"`)

	var decoded PaymentResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ResultSuccess, decoded.Result)
	assert.True(t, response.Amount.Equal(decoded.Amount))

	var r Result
	assert.Error(t, json.Unmarshal([]byte(`5`), &r))
}

func TestHTTPError(t *testing.T) {
	err := fmt.Errorf("inquiry: %w", &HTTPError{StatusCode: 502, Body: "bad gateway"})

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.EqualError(t, err, "inquiry: HTTP error 502: bad gateway")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 502, httpErr.StatusCode)
}
