package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mstgnz/ninepay/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Set(context.Context, string, map[string]string, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) Get(context.Context, string) (map[string]string, error) {
	return nil, errors.New("store down")
}

func TestRecordingProcessor(t *testing.T) {
	ctx := context.Background()
	store := provider.NewMemoryStore(0)
	recorder := NewRecordingProcessor("", store)

	assert.Equal(t, "", recorder.Type())
	assert.True(t, provider.Matches(recorder, "any-type"))

	resp, err := recorder.ReturnResponse(ctx, "RC1")
	require.NoError(t, err)
	assert.Nil(t, resp)

	returned := &provider.PaymentResponse{
		Result:        provider.ResultSuccess,
		RequestCode:   "RC1",
		OrderCode:     "ORDER-1",
		Amount:        decimal.NewFromInt(150000),
		GatewayFields: map[string]string{"status": "5"},
		CustomFields:  map[string]string{"customerId": "17"},
	}
	require.NoError(t, recorder.ProcessReturnURL(ctx, returned))

	notified := *returned
	notified.Result = provider.ResultPending
	require.NoError(t, recorder.ProcessIPN(ctx, &notified))

	got, err := recorder.ReturnResponse(ctx, "RC1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, provider.ResultSuccess, got.Result)
	assert.Equal(t, "ORDER-1", got.OrderCode)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, "17", got.CustomFields["customerId"])

	got, err = recorder.IPNResponse(ctx, "RC1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, provider.ResultPending, got.Result)

	stored, err := store.Get(ctx, "ReturnURL-RC1")
	require.NoError(t, err)
	assert.Contains(t, stored["response"], `"requestCode":"RC1"`)
	_, err = store.Get(ctx, "IPN-RC1")
	require.NoError(t, err)
}

func TestRecordingProcessor_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := provider.NewMemoryStore(0)
	store.SetClock(func() time.Time { return now })
	recorder := NewRecordingProcessor("", store)

	require.NoError(t, recorder.ProcessIPN(ctx, &provider.PaymentResponse{RequestCode: "RC2"}))

	now = now.Add(RecordingTTL + time.Second)
	got, err := recorder.IPNResponse(ctx, "RC2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordingProcessor_StoreErrors(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecordingProcessor("order", failingStore{})

	assert.False(t, provider.Matches(recorder, "refund"))
	assert.Error(t, recorder.ProcessReturnURL(ctx, &provider.PaymentResponse{RequestCode: "RC3"}))
	assert.NoError(t, recorder.ProcessIPN(ctx, nil))

	_, err := recorder.ReturnResponse(ctx, "RC3")
	assert.Error(t, err)
}
