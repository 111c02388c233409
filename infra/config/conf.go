package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port        string
	AppURL      string
	APIKey      string
	Environment string

	// Gateway
	NinePayAPIURL          string
	NinePayMerchantKey     string
	NinePaySecretKey       string
	NinePayChecksumKey     string
	NinePayReturnPath      string
	NinePayIPNPath         string
	NinePayLenientChecksum bool
	NinePayPendingStatuses []string
	NinePayTimeout         time.Duration
	RecordCallbacks        bool

	// Correlation store
	CorrelationStore      string
	CorrelationMaxEntries int
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SQLitePath            string

	// Logging
	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool

	RateLimitPerMinute int
	MetricsAllowedIPs  []string
}

var (
	instance          *Config
	instanceOnce      sync.Once
	appConfigInstance *AppConfig
)

func App() *Config {
	instanceOnce.Do(func() {
		instance = &Config{
			Validator: validator.New(),
		}
	})
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	if appConfigInstance == nil {
		appConfigInstance = &AppConfig{
			Port:        GetEnv("APP_PORT", "9999"),
			AppURL:      GetEnv("APP_URL", "http://localhost:9999"),
			APIKey:      GetEnv("API_KEY", ""),
			Environment: GetEnv("ENVIRONMENT", "development"),

			NinePayAPIURL:          GetEnv("NINEPAY_API_URL", "https://sand-payment.9pay.vn"),
			NinePayMerchantKey:     GetEnv("NINEPAY_MERCHANT_KEY", ""),
			NinePaySecretKey:       GetEnv("NINEPAY_SECRET_KEY", ""),
			NinePayChecksumKey:     GetEnv("NINEPAY_CHECKSUM_KEY", ""),
			NinePayReturnPath:      GetEnv("NINEPAY_RETURN_PATH", "/ninepay/return"),
			NinePayIPNPath:         GetEnv("NINEPAY_IPN_PATH", "/ninepay/ipn"),
			NinePayLenientChecksum: GetBoolEnv("NINEPAY_LENIENT_CHECKSUM", false),
			NinePayPendingStatuses: GetListEnv("NINEPAY_PENDING_STATUSES"),
			NinePayTimeout:         time.Duration(GetIntEnv("NINEPAY_TIMEOUT", 30)) * time.Second,
			RecordCallbacks:        GetBoolEnv("RECORD_CALLBACKS", true),

			CorrelationStore:      GetEnv("CORRELATION_STORE", "memory"),
			CorrelationMaxEntries: GetIntEnv("CORRELATION_MAX_ENTRIES", 10000),
			RedisAddr:             GetEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:         GetEnv("REDIS_PASSWORD", ""),
			RedisDB:               GetIntEnv("REDIS_DB", 0),
			SQLitePath:            GetEnv("SQLITE_PATH", "./data/ninepay.db"),

			OpenSearchURL:  GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser: GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass: GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:  GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),

			RateLimitPerMinute: GetIntEnv("RATE_LIMIT_PER_MINUTE", 100),
			MetricsAllowedIPs:  GetListEnv("METRICS_ALLOWED_IPS"),
		}
	}
	return appConfigInstance
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetListEnv splits a comma separated environment variable, dropping blank items
func GetListEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
