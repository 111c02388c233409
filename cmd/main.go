package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mstgnz/ninepay/handler"
	"github.com/mstgnz/ninepay/infra/config"
	"github.com/mstgnz/ninepay/infra/logger"
	"github.com/mstgnz/ninepay/infra/metrics"
	"github.com/mstgnz/ninepay/infra/middle"
	"github.com/mstgnz/ninepay/infra/opensearch"
	"github.com/mstgnz/ninepay/infra/store"
	"github.com/mstgnz/ninepay/infra/validate"
	"github.com/mstgnz/ninepay/provider"
	"github.com/mstgnz/ninepay/provider/ninepay"
	"github.com/mstgnz/ninepay/router"
)

const shutdownTimeout = 15 * time.Second

var (
	cfg              *config.AppConfig
	osClient         *opensearch.Client
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}
	// init conf
	_ = config.App()
	validate.CustomValidate()

	cfg = config.GetAppConfig()

	// Initialize OpenSearch client and logger
	if cfg.EnableLogging {
		client, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			osClient = client
			openSearchLogger = opensearch.NewLogger(client)
		}
	}

	if openSearchLogger != nil {
		logger.InitGlobalLogger(openSearchLogger)
	} else {
		logger.InitGlobalLogger(nil)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Correlation store
	backend, err := store.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open correlation store", err, logger.LogContext{
			Fields: map[string]any{"store": cfg.CorrelationStore},
		})
	}
	defer backend.Close()
	go backend.RunCleanup(ctx)

	// Gateway
	var resolver provider.URLResolver = provider.RequestURLResolver{}
	if cfg.AppURL != "" {
		resolver = provider.RequestURLResolver{Fallback: provider.StaticURLResolver{BaseURL: cfg.AppURL}}
	}
	opts := ninepay.OptionsFromAppConfig(cfg)
	gateway, err := ninepay.NewProvider(opts, backend, resolver)
	if err != nil {
		logger.Fatal("Invalid 9Pay configuration", err)
	}

	// Processors
	processors := provider.NewProcessorRegistry()
	var recorder *handler.RecordingProcessor
	if cfg.RecordCallbacks {
		recorder = handler.NewRecordingProcessor("", backend.Recordings)
		processors.Register(recorder)
	}

	var paymentLogger provider.PaymentLogger = provider.NopPaymentLogger{}
	var logsHandler *handler.LogsHandler
	var searchPinger handler.Pinger
	if openSearchLogger != nil {
		paymentLogger = provider.NewOpenSearchPaymentLogger(openSearchLogger)
		logsHandler = handler.NewLogsHandler(openSearchLogger)
		searchPinger = osClient
	}

	paymentService := provider.NewPaymentService(gateway, processors, paymentLogger)

	rateLimiter := middle.NewRateLimiter(cfg.RateLimitPerMinute)
	go rateLimiter.RunCleanup(ctx)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(metrics.Middleware)
	r.Use(middle.RequestValidationMiddleware(router.RoutePath(opts.ReturnURL), router.RoutePath(opts.IPNURL)))

	router.Routes(r, router.Dependencies{
		Payment:           handler.NewPaymentHandler(paymentService, config.App().Validator, recorder),
		Logs:              logsHandler,
		Health:            handler.NewHealthHandler(backend, backend.Kind, searchPinger, cfg.Environment),
		ReturnPath:        opts.ReturnURL,
		IPNPath:           opts.IPNURL,
		APIKey:            cfg.APIKey,
		RateLimiter:       rateLimiter,
		MetricsAllowedIPs: cfg.MetricsAllowedIPs,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run your HTTP server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Provider: "ninepay",
		Fields: map[string]any{
			"port":        cfg.Port,
			"store":       backend.Kind,
			"gateway":     opts.APIURL,
			"return_path": opts.ReturnURL,
			"ipn_path":    opts.IPNURL,
			"opensearch":  openSearchLogger != nil,
		},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}
}
