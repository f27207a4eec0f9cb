package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_transactions.sql", true, "0001", "create_transactions"},
		{"0010_add_index.sql", true, "0010", "add_index"},
		{"001_invalid.sql", false, "", ""},        // wrong number format
		{"0001_test", false, "", ""},              // missing .sql
		{"0001.sql", false, "", ""},               // missing name
		{"invalid_0001_test.sql", false, "", ""},  // wrong order
		{"README.md", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationPattern.FindStringSubmatch(tt.filename)
			if (matches != nil) != tt.valid {
				t.Fatalf("Pattern match = %v, want %v", matches != nil, tt.valid)
			}
			if !tt.valid {
				return
			}
			if matches[1] != tt.version || matches[2] != tt.name {
				t.Errorf("Parsed (%s, %s), want (%s, %s)", matches[1], matches[2], tt.version, tt.name)
			}
		})
	}
}

func TestReadMigrations(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	writeFile("0002_add_index.sql", "CREATE INDEX idx ON transactions(created_at);")
	writeFile("0001_create_transactions.sql", "CREATE TABLE transactions (id UUID);")
	writeFile("notes.txt", "not a migration")

	old := *migrationsDir
	*migrationsDir = dir
	defer func() { *migrationsDir = old }()

	migrations, err := readMigrations()
	if err != nil {
		t.Fatalf("readMigrations failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("Got %d migrations, want 2", len(migrations))
	}

	// Sorted by version regardless of directory order
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("Versions = [%d, %d], want [1, 2]", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "create_transactions" {
		t.Errorf("Name = %q, want create_transactions", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE transactions (id UUID);" {
		t.Errorf("SQL = %q", migrations[0].SQL)
	}

	if migrations[0].Checksum == "" || migrations[1].Checksum == "" {
		t.Error("Expected checksums to be computed")
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("Different content must produce different checksums")
	}
}

func TestReadMigrationsMissingDir(t *testing.T) {
	old := *migrationsDir
	*migrationsDir = filepath.Join(t.TempDir(), "does-not-exist")
	defer func() { *migrationsDir = old }()

	if _, err := readMigrations(); err == nil {
		t.Error("Expected error for missing migrations directory")
	}
}
