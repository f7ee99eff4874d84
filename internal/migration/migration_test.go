package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestMigrations(migrations map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range migrations {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestPlaceholder(t *testing.T) {
	if got := DialectSQLite.Placeholder(3); got != "?" {
		t.Errorf("sqlite placeholder = %q", got)
	}
	if got := DialectPostgres.Placeholder(3); got != "$3" {
		t.Errorf("postgres placeholder = %q", got)
	}
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), setupTestMigrations(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}), DialectSQLite)

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(ctx, 5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err = runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first := setupTestMigrations(map[string]string{
		"001_lists.sql": "CREATE TABLE lists (id TEXT PRIMARY KEY);",
	})
	count, err := NewRunner(db, first, DialectSQLite).ApplyMigrations(ctx, nil)
	if err != nil || count != 1 {
		t.Fatalf("first ApplyMigrations = %d, %v", count, err)
	}

	second := setupTestMigrations(map[string]string{
		"001_lists.sql":  "CREATE TABLE lists (id TEXT PRIMARY KEY);",
		"002_habits.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY, list_id TEXT REFERENCES lists(id));",
	})
	var logs []string
	runner := NewRunner(db, second, DialectSQLite)
	count, err = runner.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	version, _ := runner.GetCurrentVersion(ctx)
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	// Up to date: no-op.
	count, err = runner.ApplyMigrations(ctx, nil)
	if err != nil || count != 0 {
		t.Errorf("no-op ApplyMigrations = %d, %v", count, err)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, setupTestMigrations(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER; -- syntax error",
	}), DialectSQLite)

	count, err := runner.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", count)
	}
	version, _ := runner.GetCurrentVersion(ctx)
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), setupTestMigrations(map[string]string{
		"001_init.sql": "CREATE TABLE t (id INTEGER);",
	}), DialectSQLite)

	if err := runner.SetVersion(ctx, 9); err != nil {
		t.Fatal(err)
	}
	err := runner.ValidateVersion(ctx)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v, want newer schema error", err)
	}
	if _, err := runner.ApplyMigrations(ctx, nil); err == nil {
		t.Error("ApplyMigrations should refuse a newer database")
	}
}

func TestReadMigrationFilesValidation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing underscore", map[string]string{"001.sql": "SELECT 1;"}},
		{"non-numeric version", map[string]string{"abc_init.sql": "SELECT 1;"}},
		{"zero version", map[string]string{"000_init.sql": "SELECT 1;"}},
		{"duplicate version", map[string]string{"001_a.sql": "SELECT 1;", "001_b.sql": "SELECT 1;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, setupTestMigrations(tt.files), DialectSQLite)
			if _, err := runner.ReadMigrationFiles(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetLatestVersionIgnoresOtherFiles(t *testing.T) {
	runner := NewRunner(nil, setupTestMigrations(map[string]string{
		"001_init.sql":  "SELECT 1;",
		"003_later.sql": "SELECT 1;",
		"README.md":     "notes",
	}), DialectSQLite)

	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatal(err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}
