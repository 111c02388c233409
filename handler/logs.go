package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/ninepay/infra/opensearch"
	"github.com/mstgnz/ninepay/infra/response"
)

// LoggerInterface defines the log queries served by LogsHandler
type LoggerInterface interface {
	GetTransactionLogs(ctx context.Context, requestCode string) ([]opensearch.GatewayLog, error)
}

// LogsHandler handles logs related HTTP requests
type LogsHandler struct {
	logger LoggerInterface
}

// NewLogsHandler creates a new logs handler. A nil logger disables the endpoint.
func NewLogsHandler(logger LoggerInterface) *LogsHandler {
	return &LogsHandler{logger: logger}
}

// GetTransactionLogs handles GET /v1/payments/{requestCode}/logs
func (h *LogsHandler) GetTransactionLogs(w http.ResponseWriter, r *http.Request) {
	if h.logger == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	requestCode := chi.URLParam(r, "requestCode")
	if requestCode == "" {
		response.Error(w, http.StatusBadRequest, "requestCode parameter is required", nil)
		return
	}

	logs, err := h.logger.GetTransactionLogs(ctx, requestCode)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", map[string]any{
		"requestCode": requestCode,
		"logs":        logs,
		"count":       len(logs),
		"timestamp":   time.Now().UTC(),
	})
}
