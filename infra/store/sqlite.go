package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mstgnz/ninepay/infra/logger"
	"github.com/mstgnz/ninepay/provider"
)

const sqliteMaxRetries = 3

var _ provider.CorrelationStore = (*SQLiteStore)(nil)

// SQLiteStore is a CorrelationStore persisted in a SQLite database so records
// survive restarts and can be shared by processes on the same host
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStore) retryOperation(operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= sqliteMaxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "SQLITE_BUSY") && !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		if attempt < sqliteMaxRetries {
			// 10ms, 20ms, 40ms
			backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
			logger.Debug("SQLite busy, retrying", logger.LogContext{
				Fields: map[string]any{"backoff": backoff.String(), "attempt": attempt + 1},
			})
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", sqliteMaxRetries+1, lastErr)
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite correlation store initialized", logger.LogContext{
		Fields: map[string]any{"path": dbPath},
	})
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS correlation_records (
		record_key TEXT PRIMARY KEY,
		record_data TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_correlation_expires ON correlation_records(expires_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// SetClock replaces the time source, used by tests to simulate expiry
func (s *SQLiteStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Set stores value under key until ttl elapses, replacing any previous record
func (s *SQLiteStore) Set(ctx context.Context, key string, value map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	expiresAt := s.now().Add(ttl).UnixMilli()

	return s.retryOperation(func() error {
		query := `
		INSERT INTO correlation_records (record_key, record_data, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(record_key)
		DO UPDATE SET
			record_data = excluded.record_data,
			expires_at = excluded.expires_at
		`

		if _, err := s.db.ExecContext(ctx, query, key, string(data), expiresAt); err != nil {
			return fmt.Errorf("failed to save correlation record: %w", err)
		}
		return nil
	})
}

// Get returns the record stored under key or provider.ErrNotFound once it has expired
func (s *SQLiteStore) Get(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value map[string]string
	err := s.retryOperation(func() error {
		query := `
		SELECT record_data
		FROM correlation_records
		WHERE record_key = ? AND expires_at > ?
		`

		var data string
		err := s.db.QueryRowContext(ctx, query, key, s.now().UnixMilli()).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return provider.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load correlation record: %w", err)
		}

		if err := json.Unmarshal([]byte(data), &value); err != nil {
			return fmt.Errorf("failed to unmarshal correlation record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = map[string]string{}
	}

	return value, nil
}

// Cleanup deletes expired records and returns how many were removed
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	err := s.retryOperation(func() error {
		result, err := s.db.ExecContext(ctx, "DELETE FROM correlation_records WHERE expires_at <= ?", s.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to delete expired records: %w", err)
		}
		removed, err = result.RowsAffected()
		return err
	})

	return removed, err
}

// RunCleanup calls Cleanup every interval until ctx is done
func (s *SQLiteStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Failed to clean up expired correlation records", logger.LogContext{
					Fields: map[string]any{"error": err.Error()},
				})
			}
		}
	}
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats returns database statistics
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var total, live int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM correlation_records").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM correlation_records WHERE expires_at > ?", s.now().UnixMilli()).Scan(&live); err != nil {
		return nil, fmt.Errorf("failed to count live records: %w", err)
	}
	stats["total_records"] = total
	stats["live_records"] = live

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}
	stats["db_path"] = s.path

	return stats, nil
}
