package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/habital?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetConnectionStringRejectsInvalid(t *testing.T) {
	gokeyring.MockInit()

	for _, connStr := range []string{"", "   ", "mysql://localhost/habital"} {
		if err := SetConnectionString(connStr); err == nil {
			t.Errorf("SetConnectionString(%q) should return an error", connStr)
		}
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/habital"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}

func TestResolveDatabase(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	got, err := ResolveDatabase("/tmp/habital.db")
	if err != nil || got != "/tmp/habital.db" {
		t.Fatalf("ResolveDatabase(path) = %q, %v", got, err)
	}

	if _, err := ResolveDatabase(Reference); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResolveDatabase(keyring) error = %v, want %v", err, ErrNotFound)
	}

	stored := "postgres://habital@db:5432/habital"
	if err := SetConnectionString(stored); err != nil {
		t.Fatal(err)
	}
	got, err = ResolveDatabase(Reference)
	if err != nil || got != stored {
		t.Fatalf("ResolveDatabase(keyring) = %q, %v", got, err)
	}

	t.Setenv(EnvConnection, "postgres://override@db/habital")
	got, err = ResolveDatabase(Reference)
	if err != nil || got != "postgres://override@db/habital" {
		t.Fatalf("ResolveDatabase(keyring) with env = %q, %v", got, err)
	}
}
