package migration

import (
	"context"
	"io/fs"
	"time"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     string // Numeric version prefix of the file, e.g. "0001"
	Description string
	SQL         string
	FilePath    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Scanner reads migrations from a file system, usually an embed.FS.
type Scanner interface {
	ScanMigrations(fsys fs.FS, dir string) ([]Migration, error)
}

// Executor applies migrations and tracks which versions have run.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	ExecuteMigration(ctx context.Context, migration Migration) error
	IsVersionApplied(ctx context.Context, version string) (bool, error)
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
