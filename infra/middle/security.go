package middle

import (
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/mstgnz/ninepay/infra/response"
)

const maxRequestBody = 10 * 1024 * 1024

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// IPWhitelistMiddleware restricts access to the given IPs. An empty list allows all.
func IPWhitelistMiddleware(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 || slices.Contains(allowed, GetClientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}

			response.Error(w, http.StatusForbidden, "IP not whitelisted", nil)
		})
	}
}

// RequestValidationMiddleware validates common request properties. Requests under
// callbackPaths go straight to their handler, the gateway's callbacks are answered there.
func RequestValidationMiddleware(callbackPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isCallback := slices.ContainsFunc(callbackPaths, func(prefix string) bool {
				return strings.HasPrefix(r.URL.Path, prefix)
			})
			if isCallback {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxRequestBody {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}

			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				if r.ContentLength == 0 {
					next.ServeHTTP(w, r)
					return
				}
				response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				response.Error(w, http.StatusUnsupportedMediaType, "Malformed Content-Type", nil)
				return
			}

			if mediaType != "application/json" {
				response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
