package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	t.Parallel()

	t.Run("sorts by numeric version", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"m/10_later.sql":  {Data: []byte("SELECT 1;")},
			"m/2_earlier.sql": {Data: []byte("SELECT 1;")},
		}
		got, err := NewFileScanner().ScanMigrations(fsys, "m")
		if err != nil {
			t.Fatalf("ScanMigrations returned error: %v", err)
		}
		if len(got) != 2 || got[0].Version != "2" || got[1].Version != "10" {
			t.Fatalf("unexpected order: %+v", got)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"m/1_a.sql": {Data: []byte("SELECT 1;")},
			"m/1_b.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := NewFileScanner().ScanMigrations(fsys, "m")
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects malformed names", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"m/create.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := NewFileScanner().ScanMigrations(fsys, "m")
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})
}
