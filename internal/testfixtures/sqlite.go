package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/salon-admin/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated state database in a temporary directory.
// It is closed when the test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "state.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}
