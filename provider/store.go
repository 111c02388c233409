package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CorrelationStore keeps flat string maps under a key for a bounded time.
// Get returns ErrNotFound for keys that were never written or have expired.
type CorrelationStore interface {
	Set(ctx context.Context, key string, value map[string]string, ttl time.Duration) error
	Get(ctx context.Context, key string) (map[string]string, error)
}

// URLResolver turns an application relative path into an absolute URL
type URLResolver interface {
	AbsoluteURL(ctx context.Context, path string) (string, error)
}

// StaticURLResolver resolves paths against a fixed public base URL
type StaticURLResolver struct {
	BaseURL string
}

// AbsoluteURL joins path to the base URL. Absolute inputs are returned unchanged.
func (s StaticURLResolver) AbsoluteURL(_ context.Context, path string) (string, error) {
	if isAbsoluteURL(path) {
		return path, nil
	}
	if s.BaseURL == "" {
		return "", fmt.Errorf("cannot resolve %q: no base URL configured", path)
	}
	return joinURL(s.BaseURL, path), nil
}

type requestKey struct{}

// WithRequest stores the inbound HTTP request in ctx for RequestURLResolver
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFromContext returns the request stored by WithRequest, if any
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// RequestURLResolver derives scheme and host from the current inbound request.
// Fallback is used when ctx carries no request.
type RequestURLResolver struct {
	Fallback URLResolver
}

// AbsoluteURL resolves path against the scheme and host of the request in ctx
func (s RequestURLResolver) AbsoluteURL(ctx context.Context, path string) (string, error) {
	if isAbsoluteURL(path) {
		return path, nil
	}

	r, ok := RequestFromContext(ctx)
	if !ok {
		if s.Fallback != nil {
			return s.Fallback.AbsoluteURL(ctx, path)
		}
		return "", fmt.Errorf("cannot resolve %q: no request in context", path)
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return joinURL(scheme+"://"+host, path), nil
}

func isAbsoluteURL(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.IsAbs() && u.Host != ""
}
