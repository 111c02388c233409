package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ninepay_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ninepay_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PaymentLinks counts signed payment links handed out, by transaction type
	PaymentLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ninepay_payment_links_total",
			Help: "Payment links created.",
		},
		[]string{"type"},
	)

	// Callbacks counts processed callbacks by source (return, ipn) and derived result
	Callbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ninepay_callbacks_total",
			Help: "Callbacks processed, by source and result.",
		},
		[]string{"source", "result"},
	)

	// CallbackRejections counts callbacks that could not be processed, by source and reason
	CallbackRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ninepay_callback_rejections_total",
			Help: "Callbacks rejected, by source and reason.",
		},
		[]string{"source", "reason"},
	)

	// Inquiries counts status inquiries by outcome (a result name or "error")
	Inquiries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ninepay_inquiries_total",
			Help: "Status inquiries sent to the gateway, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Middleware records request counts and latencies keyed by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		}()

		next.ServeHTTP(ww, r)
	})
}

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
