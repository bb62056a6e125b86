// Package migration applies versioned SQLite schema changes.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "0001_create_kv_entries.sql") and are read from any fs.FS, which lets
// the store embed its schema into the binary. Applied versions are recorded in
// the schema_migrations table so each file runs once.
//
// Example usage:
//
//	runner := migration.NewRunner(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), schemaFS, "migrations", logger)
//	if _, err := runner.Run(ctx); err != nil {
//		return err
//	}
package migration
