package ninepay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Timestamp formats t as Unix seconds, the only time format the gateway signs
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// BuildMessage assembles the string to sign:
//
//	METHOD\n{endpoint}{path}\n{timestamp}[\n{query}]
//
// An empty timestamp means now. The query line is omitted when query is empty.
func BuildMessage(endpoint, method, path, query, timestamp string) string {
	if timestamp == "" {
		timestamp = Timestamp(time.Now())
	}

	var b strings.Builder
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(endpoint)
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(timestamp)

	if query != "" {
		b.WriteByte('\n')
		b.WriteString(query)
	}

	return b.String()
}

// Sign returns the standard base64 HMAC-SHA256 of message keyed with secretKey
func Sign(message, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
