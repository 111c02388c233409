package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/ninepay/provider"
	"github.com/mstgnz/ninepay/provider/ninepay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksumKey = "checksum-key"

type countingProcessor struct {
	provider.NopProcessor
	transactionType string
	returns         int
	ipns            int
}

func (p *countingProcessor) Type() string { return p.transactionType }

func (p *countingProcessor) ProcessReturnURL(context.Context, *provider.PaymentResponse) error {
	p.returns++
	return nil
}

func (p *countingProcessor) ProcessIPN(context.Context, *provider.PaymentResponse) error {
	p.ipns++
	return nil
}

type ninepayFixture struct {
	router    http.Handler
	store     *provider.MemoryStore
	now       time.Time
	orderFlow *countingProcessor
	refunds   *countingProcessor
	inquiries int
}

func newNinepayFixture(t *testing.T) *ninepayFixture {
	t.Helper()

	f := &ninepayFixture{now: time.Unix(1700000000, 0)}

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.inquiries++
		assert.Equal(t, "/v2/payments/ABC123/inquire", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Signature Algorithm=HS256,Credential=merchant,"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":5,"error_code":"000","invoice_no":"ABC123","amount":100000}`))
	}))
	t.Cleanup(gateway.Close)

	f.store = provider.NewMemoryStore(0)
	f.store.SetClock(func() time.Time { return f.now })

	gw, err := ninepay.NewProvider(ninepay.Options{
		APIURL:      gateway.URL,
		MerchantKey: "merchant",
		SecretKey:   "secret",
		ChecksumKey: testChecksumKey,
	}, f.store, provider.RequestURLResolver{})
	require.NoError(t, err)

	recorder := NewRecordingProcessor("", f.store)
	f.orderFlow = &countingProcessor{transactionType: "order-flow"}
	f.refunds = &countingProcessor{transactionType: "refund"}
	service := provider.NewPaymentService(gw, provider.NewProcessorRegistry(recorder, f.orderFlow, f.refunds), nil)

	h := NewPaymentHandler(service, validator.New(), recorder)
	r := chi.NewRouter()
	r.Get("/ninepay/return", h.HandleReturn)
	r.Post("/ninepay/ipn", h.HandleIPN)
	r.Post("/v1/payments", h.CreatePaymentLink)
	r.Get("/v1/payments/{requestCode}", h.QueryStatus)
	f.router = r

	return f
}

func (f *ninepayFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func callbackQuery(t *testing.T, fields map[string]string, key string) url.Values {
	t.Helper()
	result, checksum, err := ninepay.EncodeCallback(fields, key)
	require.NoError(t, err)
	return url.Values{"result": {result}, "checksum": {checksum}}
}

var successFields = map[string]string{
	"status":      "5",
	"error_code":  "000",
	"invoice_no":  "ABC123",
	"description": "ORD1",
	"amount":      "100000",
}

func (f *ninepayFixture) createLink(t *testing.T) string {
	t.Helper()

	body := `{"requestCode":"ABC123","orderCode":"ORD1","amount":100000,"customFields":{"customerId":"17"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/payments?type=order-flow&returnUrl=/checkout/done", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope struct {
		Data PaymentLink `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data.URL
}

func TestNinePay_PaymentLifecycle(t *testing.T) {
	f := newNinepayFixture(t)

	link := f.createLink(t)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/portal", u.Path)
	assert.Len(t, u.Query(), 2)
	assert.NotEmpty(t, u.Query().Get("baseEncode"))
	assert.NotEmpty(t, u.Query().Get("signature"))

	record, err := f.store.Get(context.Background(), "NinePayService-ABC123")
	require.NoError(t, err)
	assert.Equal(t, "order-flow", record["user_Type"])
	assert.Equal(t, "/checkout/done", record["user_returnUrl"])

	query := callbackQuery(t, successFields, testChecksumKey)

	// browser return
	w := f.do(httptest.NewRequest(http.MethodGet, "/ninepay/return?"+query.Encode(), nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/checkout/done", w.Header().Get("Location"))
	assert.Equal(t, 1, f.orderFlow.returns)
	assert.Zero(t, f.refunds.returns)

	// IPN
	req := httptest.NewRequest(http.MethodPost, "/ninepay/ipn", strings.NewReader(query.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 1, f.orderFlow.ipns)
	assert.Zero(t, f.refunds.ipns)

	// status with recorded callbacks
	w = f.do(httptest.NewRequest(http.MethodGet, "/v1/payments/ABC123", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, f.inquiries)

	var envelope struct {
		Data PaymentStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	status := envelope.Data
	assert.Equal(t, provider.ResultSuccess, status.Result)
	assert.Equal(t, "5", status.Data["status"])
	require.NotNil(t, status.ReturnResponse)
	require.NotNil(t, status.IPNResponse)
	assert.Equal(t, provider.ResultSuccess, status.ReturnResponse.Result)
	assert.Equal(t, "ABC123", status.ReturnResponse.RequestCode)
	assert.Equal(t, "ORD1", status.ReturnResponse.OrderCode)
	assert.Equal(t, "100000", status.ReturnResponse.Amount.String())
	assert.Equal(t, "17", status.IPNResponse.CustomFields["customerId"])
}

func TestNinePay_FailedPaymentStillRedirects(t *testing.T) {
	f := newNinepayFixture(t)
	f.createLink(t)

	fields := map[string]string{
		"status":      "6",
		"error_code":  "005",
		"invoice_no":  "ABC123",
		"description": "ORD1",
		"amount":      "100000",
	}
	w := f.do(httptest.NewRequest(http.MethodGet, "/ninepay/return?"+callbackQuery(t, fields, testChecksumKey).Encode(), nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/checkout/done", w.Header().Get("Location"))
	assert.Equal(t, 1, f.orderFlow.returns)
}

func TestNinePay_RejectedCallbacks(t *testing.T) {
	f := newNinepayFixture(t)
	f.createLink(t)

	forged := callbackQuery(t, successFields, "wrong-key")

	w := f.do(httptest.NewRequest(http.MethodGet, "/ninepay/return?"+forged.Encode(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/ninepay/return", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/ninepay/ipn", strings.NewReader(forged.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Zero(t, f.orderFlow.returns)
	assert.Zero(t, f.orderFlow.ipns)
}

func TestNinePay_ExpiredCorrelation(t *testing.T) {
	f := newNinepayFixture(t)
	f.createLink(t)

	f.now = f.now.Add(ninepay.CorrelationTTL + time.Second)
	query := callbackQuery(t, successFields, testChecksumKey)

	w := f.do(httptest.NewRequest(http.MethodGet, "/ninepay/return?"+query.Encode(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/ninepay/ipn", strings.NewReader(query.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Zero(t, f.orderFlow.returns)
	assert.Zero(t, f.orderFlow.ipns)
}
