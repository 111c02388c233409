package ninepay

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// ParameterSet is a string map that iterates and serializes in ascending key order.
// Empty values are never stored.
type ParameterSet map[string]string

// Add stores value under key, overwriting any previous value. Empty values are ignored.
func (p ParameterSet) Add(key, value string) {
	if value == "" {
		return
	}
	p[key] = value
}

// Keys returns the keys in ascending byte-wise order
func (p ParameterSet) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// JSON returns the set as a JSON object with keys in ascending order
func (p ParameterSet) JSON() ([]byte, error) {
	// encoding/json writes map keys sorted
	return json.Marshal(map[string]string(p))
}

// BuildQuery renders params as k1=v1&k2=v2 in key order and percent-encodes the
// whole string, keeping only RFC 3986 unreserved characters literal. The '=' and
// '&' separators are restored afterwards, so they are also unescaped inside values.
func BuildQuery(params ParameterSet) string {
	if len(params) == 0 {
		return ""
	}

	var raw strings.Builder
	for i, key := range params.Keys() {
		if i > 0 {
			raw.WriteByte('&')
		}
		raw.WriteString(key)
		raw.WriteByte('=')
		raw.WriteString(params[key])
	}

	encoded := escapeDataString(raw.String())
	encoded = strings.ReplaceAll(encoded, "%3D", "=")
	encoded = strings.ReplaceAll(encoded, "%26", "&")

	return encoded
}

const upperHex = "0123456789ABCDEF"

// escapeDataString percent-encodes every UTF-8 byte outside A-Z a-z 0-9 - _ . ~
func escapeDataString(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
