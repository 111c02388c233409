package ninepay

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mstgnz/ninepay/provider"
)

// Checksum returns the uppercase hex SHA-256 of payload followed by checksumKey
func Checksum(payload, checksumKey string) string {
	sum := sha256.Sum256([]byte(payload + checksumKey))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifyChecksum compares checksum against the expected value in constant time
func VerifyChecksum(payload, checksum, checksumKey string) error {
	expected := Checksum(payload, checksumKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(checksum)) != 1 {
		return fmt.Errorf("checksum mismatch: %w", provider.ErrUnverifiableCallback)
	}
	return nil
}

// DecodePayload decodes a base64url (or standard base64) JSON object into a flat
// string map. Missing padding is tolerated.
func DecodePayload(payload string) (map[string]string, error) {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(payload)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("malformed base64 payload: %w: %w", provider.ErrUnverifiableCallback, err)
	}

	fields, err := parseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed JSON payload: %w: %w", provider.ErrUnverifiableCallback, err)
	}

	return fields, nil
}

// EncodePayload is the inverse of DecodePayload, producing unpadded base64url JSON
func EncodePayload(fields map[string]string) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// EncodeCallback builds the result and checksum pair the gateway sends on callback
func EncodeCallback(fields map[string]string, checksumKey string) (result, checksum string, err error) {
	result, err = EncodePayload(fields)
	if err != nil {
		return "", "", err
	}
	return result, Checksum(result, checksumKey), nil
}

// parseObject decodes a JSON object and renders every value as a string.
// Numbers keep their literal form and nested values are re-encoded compactly.
// Null values map to the empty string.
func parseObject(raw []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("payload is not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}

	fields := make(map[string]string, len(data))
	for key, value := range data {
		s, err := stringify(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields[key] = s
	}

	return fields, nil
}

func stringify(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		// lowercase, matching the JSON literal rather than the gateway's .NET "True"/"False"
		return strconv.FormatBool(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
