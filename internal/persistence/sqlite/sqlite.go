// Package sqlite implements persistence.KVStore on top of modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/salon-admin/internal/persistence"
	"github.com/example/salon-admin/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// Storage is a SQLite-backed key-value store.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migration output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens the database at path with DefaultSQLiteConfig. Use ":memory:"
// for a throwaway store.
func Open(path string, opts ...Option) (*Storage, error) {
	cfg := migration.DefaultSQLiteConfig(path)
	if path == ":memory:" {
		cfg = migration.InMemoryTestSQLiteConfig()
	}
	return OpenWithConfig(cfg, opts...)
}

// OpenWithConfig opens the database described by cfg.
func OpenWithConfig(cfg migration.SQLiteConfig, opts ...Option) (*Storage, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		pool:   pool,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	runner := migration.NewRunner(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		schemaFS,
		"migrations",
		s.logger,
	)
	if _, err := runner.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", persistence.ErrInvalidKey
	}

	var value string
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return persistence.ErrInvalidKey
	}

	const query = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.pool.DB().ExecContext(ctx, query, key, value, s.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the listed keys in a single transaction.
func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
				return fmt.Errorf("sqlite: delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// Keys returns the stored keys in ascending order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT key FROM kv_entries ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite: scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
