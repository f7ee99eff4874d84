package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/storagetest"
)

var _ storage.Provider = (*Store)(nil)

// TestStore_Integration runs the storage behavior suite against a real
// database. Set POSTGRES_TEST_URL to run it, e.g.
// POSTGRES_TEST_URL="postgres://habital@localhost:5432/habital_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	storagetest.Run(t, store)
}
