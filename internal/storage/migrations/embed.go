// Package migrations applies the embedded schema files to PostgreSQL
// and ClickHouse. Files run in lexical order, so numeric prefixes
// control sequencing.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var migrationFS embed.FS

// loadMigrations returns the SQL files under dir, sorted by name.
func loadMigrations(dir string) ([]string, map[string]string, error) {
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var names []string
	contents := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := migrationFS.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		names = append(names, entry.Name())
		contents[entry.Name()] = string(data)
	}
	sort.Strings(names)
	return names, contents, nil
}
