package system

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/api"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
)

func TestServeStopsOnCancel(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	ctx.Codec = interchange.NewCodec(ctx.Store, interchange.WithLockDir(t.TempDir()))

	runCtx, cancel := context.WithCancel(context.Background())
	ctx.Context = runCtx

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/today"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeSeesWritesFromOtherProcesses(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	ctx.Codec = interchange.NewCodec(ctx.Store, interchange.WithLockDir(t.TempDir()))

	h, err := ctx.Habits.CreateHabit(ctx.Ctx(), habits.NewHabit{
		Name:      "Read",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx.Context = runCtx

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/today?date=2024-06-05"
	completed := func() bool {
		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var items []api.HabitDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
		require.Len(t, items, 1)
		return items[0].Completed
	}

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
	assert.False(t, completed())

	// Written straight to the store, as another habital process would.
	require.NoError(t, ctx.Store.SaveCompletion(ctx.Ctx(), models.Completion{
		ID:        uuid.New(),
		HabitID:   h.ID,
		Date:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		LoggedAt:  time.Date(2024, 6, 5, 7, 0, 0, 0, time.UTC),
		Completed: true,
	}))
	assert.True(t, completed())

	cancel()
	require.NoError(t, <-done)
}
