package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mstgnz/ninepay/infra/config"
	"github.com/mstgnz/ninepay/provider"
)

// Store kinds accepted by CORRELATION_STORE
const (
	KindMemory = "memory"
	KindRedis  = "redis"
	KindSQLite = "sqlite"
)

const (
	redisKeyPrefix  = "ninepay:"
	recordingPrefix = "recording:"
	cleanupInterval = 15 * time.Minute
)

// Backend is a correlation store together with its lifecycle hooks. Recordings is a
// separate keyspace for diagnostic callback recordings so they never compete with
// correlation records for room.
type Backend struct {
	provider.CorrelationStore

	Kind       string
	Recordings provider.CorrelationStore

	ping    func(ctx context.Context) error
	stats   func(ctx context.Context) (any, error)
	cleanup func(ctx context.Context)
	close   func() error
}

// Ping reports whether the backend is reachable. Memory stores are always healthy.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Stats returns backend specific statistics for the health check
func (b *Backend) Stats(ctx context.Context) (any, error) {
	if b.stats == nil {
		return nil, nil
	}
	return b.stats(ctx)
}

// RunCleanup removes expired entries periodically until ctx is done.
// It returns immediately for backends that expire entries on their own.
func (b *Backend) RunCleanup(ctx context.Context) {
	if b.cleanup != nil {
		b.cleanup(ctx)
	}
}

// Close releases the backend's resources
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// New opens the correlation store selected by cfg.CorrelationStore
func New(ctx context.Context, cfg *config.AppConfig) (*Backend, error) {
	switch cfg.CorrelationStore {
	case "", KindMemory:
		s := provider.NewMemoryStore(cfg.CorrelationMaxEntries)
		recordings := provider.NewEvictingMemoryStore(cfg.CorrelationMaxEntries)
		return &Backend{
			CorrelationStore: s,
			Kind:             KindMemory,
			Recordings:       recordings,
			stats:            func(context.Context) (any, error) { return s.Stats(), nil },
			cleanup: func(ctx context.Context) {
				go recordings.RunCleanup(ctx, cleanupInterval)
				s.RunCleanup(ctx, cleanupInterval)
			},
		}, nil

	case KindRedis:
		s, err := OpenRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   redisKeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{
			CorrelationStore: s,
			Kind:             KindRedis,
			Recordings:       s.WithPrefix(recordingPrefix),
			ping:             s.Ping,
			stats:            s.Stats,
			close:            s.Close,
		}, nil

	case KindSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			CorrelationStore: s,
			Kind:             KindSQLite,
			Recordings:       s,
			ping:             s.Ping,
			stats:            func(ctx context.Context) (any, error) { return s.Stats(ctx) },
			cleanup:          func(ctx context.Context) { s.RunCleanup(ctx, cleanupInterval) },
			close:            s.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown correlation store %q: %w", cfg.CorrelationStore, provider.ErrConfiguration)
	}
}
