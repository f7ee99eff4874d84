package migration

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB connects to POSTGRES_TEST_URL, skipping when unset.
// Example: POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS test_patterns")
		db.Exec("DROP TABLE IF EXISTS test_habits")
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Close()
	})
	return db
}

func TestPostgresApplyMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupPostgresTestDB(t)

	runner := NewRunner(db, setupTestMigrations(map[string]string{
		"001_habits.sql":   "CREATE TABLE test_habits (id UUID PRIMARY KEY, name TEXT NOT NULL);",
		"002_patterns.sql": "CREATE TABLE test_patterns (id UUID PRIMARY KEY, habit_id UUID NOT NULL REFERENCES test_habits(id) ON DELETE CASCADE);",
	}), DialectPostgres)

	count, err := runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if err := runner.SetVersion(ctx, 1); err != nil {
		t.Fatalf("SetVersion with $1 placeholder failed: %v", err)
	}
}
