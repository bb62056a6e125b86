package migration

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// fileScanner implements Scanner for files named {version}_{description}.sql.
type fileScanner struct {
	pattern *regexp.Regexp
}

// NewFileScanner creates a Scanner.
func NewFileScanner() Scanner {
	return &fileScanner{
		pattern: regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`),
	}
}

// ScanMigrations returns the migrations under dir sorted by numeric version.
func (s *fileScanner) ScanMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, NewMigrationError("", dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		matches := s.pattern.FindStringSubmatch(entry.Name())
		if len(matches) != 3 {
			return nil, NewMigrationError("", entry.Name(), "validate filename",
				fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, entry.Name()))
		}
		version := matches[1]

		if existing, ok := seen[version]; ok {
			return nil, NewMigrationError(version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, existing, entry.Name()))
		}
		seen[version] = entry.Name()

		filePath := path.Join(dir, entry.Name())
		body, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, NewMigrationError(version, filePath, "read file", err)
		}
		if strings.TrimSpace(string(body)) == "" {
			return nil, NewMigrationError(version, filePath, "parse SQL",
				fmt.Errorf("%w: empty migration", ErrInvalidMigrationFile))
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(matches[2], "_", " "),
			SQL:         string(body),
			FilePath:    filePath,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})

	return migrations, nil
}
