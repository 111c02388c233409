package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mstgnz/ninepay/handler"
	"github.com/mstgnz/ninepay/infra/metrics"
	"github.com/mstgnz/ninepay/infra/middle"
	"github.com/mstgnz/ninepay/infra/response"
	v1 "github.com/mstgnz/ninepay/router/v1"
)

// Dependencies are the handlers and settings the routes are built from
type Dependencies struct {
	Payment *handler.PaymentHandler
	Logs    *handler.LogsHandler
	Health  *handler.HealthHandler

	// ReturnPath and IPNPath are the gateway callback routes, paths or absolute URLs
	ReturnPath string
	IPNPath    string

	APIKey            string
	RateLimiter       *middle.RateLimiter
	MetricsAllowedIPs []string
}

// Routes registers the public callback routes, the operational endpoints and the /v1 API
func Routes(r chi.Router, deps Dependencies) {
	// Gateway callbacks (no auth, no rate limit)
	r.Get(RoutePath(deps.ReturnPath), deps.Payment.HandleReturn)
	r.Post(RoutePath(deps.IPNPath), deps.Payment.HandleIPN)

	if deps.Health != nil {
		r.Get("/health", deps.Health.CheckHealth)
	}
	r.With(middle.IPWhitelistMiddleware(deps.MetricsAllowedIPs)).Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300, // Preflight cache time (second)
		}))
		r.Use(middle.AuthMiddleware(deps.APIKey))
		if deps.RateLimiter != nil {
			r.Use(middle.RateLimitMiddleware(deps.RateLimiter))
		}

		v1.Routes(r, deps.Payment, deps.Logs)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})
}

// RoutePath returns the path component of a configured callback path or URL
func RoutePath(p string) string {
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
