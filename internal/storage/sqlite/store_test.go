package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/storagetest"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "habital.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, setupTestStore(t))
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "habital init")
}

func TestLoadExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habital.db")

	first := NewStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveHabit(ctx, storagetest.NewHabit("Walk", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, first.Close())

	second := NewStore(path)
	require.NoError(t, second.Load(ctx))
	defer second.Close()

	habits, err := second.Habits(ctx, storage.HabitFilter{})
	require.NoError(t, err)
	assert.Len(t, habits, 1)

	current, latest, err := second.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.GreaterOrEqual(t, latest, 1)
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Init(context.Background()))
}
