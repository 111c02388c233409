package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// GatewayLog represents one gateway interaction: link creation, callback or inquiry
type GatewayLog struct {
	Timestamp    time.Time         `json:"timestamp"`
	Event        string            `json:"event"`
	Type         string            `json:"type,omitempty"`
	RequestCode  string            `json:"request_code,omitempty"`
	OrderCode    string            `json:"order_code,omitempty"`
	Result       string            `json:"result,omitempty"`
	Amount       string            `json:"amount,omitempty"`
	RequestID    string            `json:"request_id"`
	ClientIP     string            `json:"client_ip,omitempty"`
	ProcessingMs int64             `json:"processing_ms"`
	Fields       map[string]string `json:"fields,omitempty"`
	Error        *ErrorInfo        `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogGatewayEvent indexes a gateway interaction
func (l *Logger) LogGatewayEvent(ctx context.Context, entry GatewayLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}
	entry.Fields = SanitizeFields(entry.Fields)

	return l.index(ctx, GatewayLogIndex, entry)
}

// LogSystemEvent logs a system event to OpenSearch
func (l *Logger) LogSystemEvent(ctx context.Context, entry any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	return l.index(ctx, SystemLogIndex, entry)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// GetTransactionLogs returns the most recent gateway logs for a request code, newest first
func (l *Logger) GetTransactionLogs(ctx context.Context, requestCode string) ([]GatewayLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"request_code": requestCode},
		},
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": defaultSearchMax,
	}

	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{GatewayLogIndex},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source GatewayLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]GatewayLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

var sensitiveKey = regexp.MustCompile(`(?i)^(secret.*|checksum.*|signature|authorization|merchantkey|password|token|card.*|cvv|cvc)$`)

// SanitizeFields returns a copy of fields with credentials and card data redacted
func SanitizeFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}

	sanitized := make(map[string]string, len(fields))
	for key, value := range fields {
		if sensitiveKey.MatchString(key) {
			value = "***REDACTED***"
		}
		sanitized[key] = value
	}

	return sanitized
}
