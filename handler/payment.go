package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/ninepay/infra/logger"
	"github.com/mstgnz/ninepay/infra/response"
	"github.com/mstgnz/ninepay/provider"
)

const requestTimeout = 30 * time.Second

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	CreatePaymentLink(ctx context.Context, transactionType string, request provider.PaymentRequest, returnURL string) (string, error)
	HandleReturn(ctx context.Context, params map[string]string) (*provider.CallbackResult, error)
	HandleIPN(ctx context.Context, params map[string]string) (*provider.CallbackResult, error)
	QueryStatus(ctx context.Context, requestCode string) (*provider.InquiryResult, error)
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
	recorder       *RecordingProcessor
}

// PaymentLink is the body returned when a link is created
type PaymentLink struct {
	URL         string `json:"url"`
	RequestCode string `json:"requestCode"`
}

// PaymentStatus combines the live inquiry with the recorded callback responses
type PaymentStatus struct {
	Result         provider.Result           `json:"result"`
	Data           map[string]string         `json:"data"`
	ReturnResponse *provider.PaymentResponse `json:"returnResponse,omitempty"`
	IPNResponse    *provider.PaymentResponse `json:"ipnResponse,omitempty"`
}

// NewPaymentHandler creates a new payment handler. recorder may be nil.
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate, recorder *RecordingProcessor) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
		recorder:       recorder,
	}
}

// CreatePaymentLink handles POST /v1/payments?type=&returnUrl=
func (h *PaymentHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(provider.WithRequest(r.Context(), r), requestTimeout)
	defer cancel()

	var req provider.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	req.RequestCode = strings.TrimSpace(req.RequestCode)
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	transactionType := r.URL.Query().Get("type")
	returnURL := r.URL.Query().Get("returnUrl")
	if returnURL == "" {
		returnURL = "/v1/payments/" + url.PathEscape(req.RequestCode)
	}

	link, err := h.paymentService.CreatePaymentLink(ctx, transactionType, req, returnURL)
	if err != nil {
		response.Error(w, statusFor(err), "Failed to create payment link", err)
		return
	}

	response.Success(w, http.StatusCreated, "Payment link created", PaymentLink{
		URL:         link,
		RequestCode: req.RequestCode,
	})
}

// HandleReturn handles the browser return from the gateway and redirects to the stored return URL
func (h *PaymentHandler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(provider.WithRequest(r.Context(), r), requestTimeout)
	defer cancel()

	params, err := provider.CallbackParams(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid callback parameters", err)
		return
	}

	result, err := h.paymentService.HandleReturn(ctx, params)
	if err != nil {
		response.Error(w, statusFor(err), "Payment return could not be processed", err)
		return
	}

	if result.ReturnURL == "" {
		response.Success(w, http.StatusOK, "Payment return processed", result.Response)
		return
	}

	http.Redirect(w, r, result.ReturnURL, http.StatusFound)
}

// HandleIPN handles gateway notifications. The gateway requires 200 with an
// empty body whatever happens, so every error ends here.
func (h *PaymentHandler) HandleIPN(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("IPN handler panicked", fmt.Errorf("%v", rec), logger.LogContext{
				Provider: "ninepay",
			})
		}
		w.WriteHeader(http.StatusOK)
	}()

	ctx, cancel := context.WithTimeout(provider.WithRequest(r.Context(), r), requestTimeout)
	defer cancel()

	params, err := provider.CallbackParams(r)
	if err != nil {
		logger.Warn("Invalid IPN parameters", logger.LogContext{
			Provider: "ninepay",
			Fields:   map[string]any{"error": err.Error()},
		})
		return
	}

	if _, err := h.paymentService.HandleIPN(ctx, params); err != nil {
		logger.Warn("IPN could not be processed", logger.LogContext{
			Provider: "ninepay",
			Fields: map[string]any{
				"reason": provider.ErrorCode(err),
				"error":  err.Error(),
			},
		})
	}
}

// QueryStatus handles GET /v1/payments/{requestCode}
func (h *PaymentHandler) QueryStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(provider.WithRequest(r.Context(), r), requestTimeout)
	defer cancel()

	requestCode := chi.URLParam(r, "requestCode")
	if requestCode == "" {
		response.Error(w, http.StatusBadRequest, "requestCode parameter is required", nil)
		return
	}

	inquiry, err := h.paymentService.QueryStatus(ctx, requestCode)
	if err != nil {
		response.Error(w, statusFor(err), "Failed to query payment status", err)
		return
	}

	status := PaymentStatus{
		Result: inquiry.Result,
		Data:   inquiry.Data,
	}

	if h.recorder != nil {
		if status.ReturnResponse, err = h.recorder.ReturnResponse(ctx, requestCode); err != nil {
			logger.Warn("Failed to read recorded return response", logger.LogContext{
				Provider:    "ninepay",
				RequestCode: requestCode,
				Fields:      map[string]any{"error": err.Error()},
			})
		}
		if status.IPNResponse, err = h.recorder.IPNResponse(ctx, requestCode); err != nil {
			logger.Warn("Failed to read recorded IPN response", logger.LogContext{
				Provider:    "ninepay",
				RequestCode: requestCode,
				Fields:      map[string]any{"error": err.Error()},
			})
		}
	}

	response.Success(w, http.StatusOK, "Payment status retrieved", status)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrInvalidRequest), errors.Is(err, provider.ErrUnverifiableCallback):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrUnknownTransaction):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, provider.ErrGatewayUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, provider.ErrStoreFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
