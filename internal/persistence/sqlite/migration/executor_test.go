package migration

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewConnectionManager(InMemoryTestSQLiteConfig()).GetConnection()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteExecutor_ExecuteMigration(t *testing.T) {
	db := setupTestDB(t)
	executor := NewSQLiteExecutor(db)
	ctx := context.Background()

	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable failed: %v", err)
	}
	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable should be idempotent: %v", err)
	}

	m := Migration{
		Version: "0001",
		SQL: `
			-- test table
			CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);
			INSERT INTO notes (body) VALUES ('hello');
		`,
		FilePath: "0001_notes.sql",
	}
	if err := executor.ExecuteMigration(ctx, m); err != nil {
		t.Fatalf("ExecuteMigration failed: %v", err)
	}

	applied, err := executor.IsVersionApplied(ctx, "0001")
	if err != nil {
		t.Fatalf("IsVersionApplied failed: %v", err)
	}
	if !applied {
		t.Fatalf("expected version 0001 to be recorded")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("query notes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestSQLiteExecutor_ExecuteMigrationRollsBack(t *testing.T) {
	db := setupTestDB(t)
	executor := NewSQLiteExecutor(db)
	ctx := context.Background()

	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable failed: %v", err)
	}

	m := Migration{
		Version:  "0002",
		SQL:      `CREATE TABLE broken (id INTEGER); INSERT INTO missing_table VALUES (1);`,
		FilePath: "0002_broken.sql",
	}
	err := executor.ExecuteMigration(ctx, m)
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}

	applied, err := executor.IsVersionApplied(ctx, "0002")
	if err != nil {
		t.Fatalf("IsVersionApplied failed: %v", err)
	}
	if applied {
		t.Fatalf("failed migration must not be recorded")
	}
	if _, err := db.Exec(`INSERT INTO broken VALUES (1)`); err == nil {
		t.Fatalf("expected table from rolled back migration to be absent")
	}
}

func TestRunner_AppliesPendingOnce(t *testing.T) {
	db := setupTestDB(t)
	fsys := fstest.MapFS{
		"migrations/0002_add_index.sql":   {Data: []byte(`CREATE INDEX idx_items_name ON items(name);`)},
		"migrations/0001_create_items.sql": {Data: []byte(`CREATE TABLE items (name TEXT);`)},
		"migrations/README.md":             {Data: []byte(`ignored`)},
	}
	runner := NewRunner(NewFileScanner(), NewSQLiteExecutor(db), fsys, "migrations", nil)
	ctx := context.Background()

	applied, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(applied) != 2 || applied[0] != "0001" || applied[1] != "0002" {
		t.Fatalf("unexpected applied versions: %v", applied)
	}

	applied, err = runner.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no pending migrations, got %v", applied)
	}
}
