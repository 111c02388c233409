package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mstgnz/ninepay/provider"
	"github.com/redis/go-redis/v9"
)

var _ provider.CorrelationStore = (*RedisStore)(nil)

// RedisStore is a CorrelationStore backed by Redis string keys with native expiry
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key
	Prefix string
}

// NewRedisClient creates and tests a new connection to Redis
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return rdb, nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// OpenRedisStore connects to Redis and returns a store keyed under opts.Prefix
func OpenRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client, err := NewRedisClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(client, opts.Prefix), nil
}

// WithPrefix returns a store sharing the same client whose keys live under an extra prefix
func (s *RedisStore) WithPrefix(prefix string) *RedisStore {
	return NewRedisStore(s.client, s.prefix+prefix)
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Set stores value under key with a Redis TTL
func (s *RedisStore) Set(ctx context.Context, key string, value map[string]string, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store correlation record: %w", err)
	}
	return nil
}

// Get returns the record under key, or provider.ErrNotFound when Redis has no such key
func (s *RedisStore) Get(ctx context.Context, key string) (map[string]string, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, provider.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load correlation record: %w", err)
	}

	value := map[string]string{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal correlation record: %w", err)
	}

	return value, nil
}

// Stats returns the client's connection pool statistics
func (s *RedisStore) Stats(context.Context) (any, error) {
	return s.client.PoolStats(), nil
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
