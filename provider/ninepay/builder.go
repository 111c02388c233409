package ninepay

import (
	"encoding/base64"
	"fmt"
	"maps"
	"time"
)

// RequestBuilder accumulates outbound request fields and decoded callback fields
// for a single gateway exchange. It is not safe for concurrent use.
type RequestBuilder struct {
	endpoint string
	request  ParameterSet
	response ParameterSet
	now      func() time.Time
}

// NewRequestBuilder creates a builder for the gateway at endpoint
func NewRequestBuilder(endpoint string) *RequestBuilder {
	return &RequestBuilder{
		endpoint: endpoint,
		request:  ParameterSet{},
		response: ParameterSet{},
		now:      time.Now,
	}
}

// SetClock replaces the time source used for message timestamps
func (b *RequestBuilder) SetClock(now func() time.Time) {
	b.now = now
}

// AddRequestData sets an outbound field. Empty values are dropped and later writes win.
func (b *RequestBuilder) AddRequestData(key, value string) {
	b.request.Add(key, value)
}

// AddResponseData sets a decoded callback field. Empty values are dropped.
func (b *RequestBuilder) AddResponseData(key, value string) {
	b.response.Add(key, value)
}

// ResponseData returns a decoded field or the empty string
func (b *RequestBuilder) ResponseData(key string) string {
	return b.response[key]
}

// Result returns a copy of all decoded fields
func (b *RequestBuilder) Result() map[string]string {
	return maps.Clone(map[string]string(b.response))
}

// CreateRequestURL signs the request fields and returns the portal redirect URL
func (b *RequestBuilder) CreateRequestURL(secretKey string) (string, error) {
	query := BuildQuery(b.request)
	message := BuildMessage(b.endpoint, "POST", endpointCreatePayment, query, Timestamp(b.now()))
	signature := Sign(message, secretKey)

	payload, err := b.request.JSON()
	if err != nil {
		return "", fmt.Errorf("encoding request fields: %w", err)
	}

	portalQuery := BuildQuery(ParameterSet{
		"baseEncode": base64.StdEncoding.EncodeToString(payload),
		"signature":  signature,
	})

	return b.endpoint + endpointPortal + "?" + portalQuery, nil
}

// ValidateAndDecode verifies the callback checksum and loads the decoded payload
// into the response fields. With lenient set, a checksum mismatch is reported
// through verified=false instead of an error. Decode failures are always errors.
func (b *RequestBuilder) ValidateAndDecode(result, checksum, checksumKey string, lenient bool) (verified bool, err error) {
	verified = true
	if err := VerifyChecksum(result, checksum, checksumKey); err != nil {
		if !lenient {
			return false, err
		}
		verified = false
	}

	fields, err := DecodePayload(result)
	if err != nil {
		return false, err
	}

	for key, value := range fields {
		b.AddResponseData(key, value)
	}

	return verified, nil
}
