package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/ninepay/infra/opensearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock OpenSearch Logger for testing
type mockOpenSearchLogger struct {
	getTransactionLogsFunc func(ctx context.Context, requestCode string) ([]opensearch.GatewayLog, error)
}

func (m *mockOpenSearchLogger) GetTransactionLogs(ctx context.Context, requestCode string) ([]opensearch.GatewayLog, error) {
	if m.getTransactionLogsFunc != nil {
		return m.getTransactionLogsFunc(ctx, requestCode)
	}
	return []opensearch.GatewayLog{
		{Event: "create_link", RequestCode: requestCode},
		{Event: "return", RequestCode: requestCode, Result: "success"},
	}, nil
}

func TestLogsHandler_GetTransactionLogs(t *testing.T) {
	tests := []struct {
		name           string
		logger         LoggerInterface
		requestCode    string
		expectedStatus int
		expectedCount  float64
	}{
		{
			name:           "logs found",
			logger:         &mockOpenSearchLogger{},
			requestCode:    "RC1",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "logging disabled",
			logger:         nil,
			requestCode:    "RC1",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "missing request code",
			logger:         &mockOpenSearchLogger{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "search failure",
			logger: &mockOpenSearchLogger{
				getTransactionLogsFunc: func(context.Context, string) ([]opensearch.GatewayLog, error) {
					return nil, errors.New("search failed")
				},
			},
			requestCode:    "RC1",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLogsHandler(tt.logger)

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/v1/payments/"+tt.requestCode+"/logs", nil), "requestCode", tt.requestCode)
			w := httptest.NewRecorder()

			h.GetTransactionLogs(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var envelope struct {
				Data map[string]any `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, "RC1", envelope.Data["requestCode"])
			assert.Equal(t, tt.expectedCount, envelope.Data["count"])
		})
	}
}
