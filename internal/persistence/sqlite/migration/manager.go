package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
)

// Runner applies pending migrations from a file system in version order.
type Runner struct {
	scanner  Scanner
	executor Executor
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
}

// NewRunner wires a Runner. A nil logger falls back to slog.Default.
func NewRunner(scanner Scanner, executor Executor, fsys fs.FS, dir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		scanner:  scanner,
		executor: executor,
		fsys:     fsys,
		dir:      dir,
		logger:   logger,
	}
}

// Run applies every migration that is not yet recorded and returns the
// versions it applied.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	migrations, err := r.scanner.ScanMigrations(r.fsys, r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		done, err := r.executor.IsVersionApplied(ctx, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := r.executor.ExecuteMigration(ctx, m); err != nil {
			r.logger.Error("migration failed", "version", m.Version, "file", m.FilePath, "error", err)
			return applied, err
		}
		r.logger.Debug("migration applied", "version", m.Version, "description", m.Description)
		applied = append(applied, m.Version)
	}
	return applied, nil
}
