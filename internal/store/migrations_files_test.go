package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Migrations apply in lexicographic order; the file naming convention
// is what keeps that order stable.
func TestMigrationFilesFollowNamingConvention(t *testing.T) {
	dir := filepath.Join("..", "..", "db", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one migration file")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			t.Fatalf("unexpected directory in migrations: %s", entry.Name())
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			t.Fatalf("migration %s does not end in .up.sql", name)
		}
		prefix := strings.SplitN(name, "_", 2)[0]
		if len(prefix) != 4 {
			t.Fatalf("migration %s must start with a 4-digit sequence", name)
		}
		for _, r := range prefix {
			if r < '0' || r > '9' {
				t.Fatalf("migration %s has a non-numeric sequence prefix", name)
			}
		}
		contents, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		if len(strings.TrimSpace(string(contents))) == 0 {
			t.Fatalf("migration %s is empty", name)
		}
	}
}
