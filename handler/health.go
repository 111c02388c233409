package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/ninepay/infra/response"
)

const healthTimeout = 5 * time.Second

// Pinger is a dependency whose reachability is reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsReporter is implemented by stores that expose statistics next to their health
type StatsReporter interface {
	Stats(ctx context.Context) (any, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store       Pinger
	storeKind   string
	search      Pinger
	environment string
	startTime   time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Services    map[string]*ServiceHealth `json:"services"`
	System      *SystemHealth             `json:"system"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status       string `json:"status"`
	Healthy      bool   `json:"healthy"`
	ResponseTime string `json:"response_time,omitempty"`
	Description  string `json:"description,omitempty"`
	Error        string `json:"error,omitempty"`
	Stats        any    `json:"stats,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// NewHealthHandler creates a new health handler. search may be nil when OpenSearch logging is off.
func NewHealthHandler(store Pinger, storeKind string, search Pinger, environment string) *HealthHandler {
	return &HealthHandler{
		store:       store,
		storeKind:   storeKind,
		search:      search,
		environment: environment,
		startTime:   time.Now(),
	}
}

// CheckHealth reports the correlation store and log sink status.
// Only an unreachable correlation store makes the service unhealthy.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	store := checkService(ctx, h.store, "Correlation store ("+h.storeKind+")")
	if reporter, ok := h.store.(StatsReporter); ok && store.Healthy {
		if stats, err := reporter.Stats(ctx); err == nil {
			store.Stats = stats
		}
	}

	health := &HealthStatus{
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Services: map[string]*ServiceHealth{
			"correlation_store": store,
			"opensearch":        checkService(ctx, h.search, "Gateway and system log sink"),
		},
		System: checkSystemHealth(),
	}

	health.Status = "healthy"
	statusCode := http.StatusOK
	switch {
	case !health.Services["correlation_store"].Healthy:
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case health.Services["opensearch"].Status == "unhealthy":
		health.Status = "degraded"
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func checkService(ctx context.Context, p Pinger, description string) *ServiceHealth {
	if p == nil {
		return &ServiceHealth{
			Status:      "not_configured",
			Description: description,
		}
	}

	start := time.Now()
	err := p.Ping(ctx)
	service := &ServiceHealth{
		Status:       "healthy",
		Healthy:      err == nil,
		ResponseTime: fmt.Sprintf("%.0fms", float64(time.Since(start).Nanoseconds())/1e6),
		Description:  description,
	}
	if err != nil {
		service.Status = "unhealthy"
		service.Error = err.Error()
	}

	return service
}

func checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Alloc:      formatBytes(memStats.Alloc),
		Sys:        formatBytes(memStats.Sys),
		GCRuns:     memStats.NumGC,
		GoRoutines: runtime.NumGoroutine(),
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
