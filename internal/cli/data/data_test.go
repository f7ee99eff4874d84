package data

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/config"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
	"github.com/eliasosarumwense/Habital-sub003/internal/stats"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/sqlite"
)

var clock = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "habital.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	eval := recurrence.NewEvaluator(recurrence.NewCalendar(time.UTC, time.Monday), recurrence.NewMemoCache())
	svc := habits.NewService(store, eval)
	svc.SetClock(func() time.Time { return clock })

	var out bytes.Buffer
	return &cli.Context{
		Config: config.Config{ExportDir: filepath.Join(dir, "exports")},
		Store:  store,
		Habits: svc,
		Codec:  interchange.NewCodec(store, interchange.WithLockDir(dir)),
		Out:    &out,
		Yes:    true,
	}, &out
}

func seed(t *testing.T, ctx *cli.Context) models.Habit {
	t.Helper()
	h, err := ctx.Habits.CreateHabit(ctx.Ctx(), habits.NewHabit{
		Name:      "Walk",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Goal:      models.DailyGoal{Pattern: models.DailyEveryDay},
	})
	require.NoError(t, err)
	for _, d := range []int{3, 4, 5} {
		_, err := ctx.Habits.Toggle(ctx.Ctx(), h.ID, time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}
	return h
}

func TestExportDefaultsToExportDir(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx)

	require.NoError(t, (&ExportCmd{}).Run(ctx))

	path := filepath.Join(ctx.Config.ExportDir, interchange.Filename(clock))
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), "1 habits")
	assert.Contains(t, out.String(), "3 completions")
}

func TestExportToDirectoryAndStdout(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx)

	dir := t.TempDir()
	require.NoError(t, (&ExportCmd{Output: dir}).Run(ctx))
	assert.FileExists(t, filepath.Join(dir, interchange.Filename(clock)))

	out.Reset()
	require.NoError(t, (&ExportCmd{Output: "-"}).Run(ctx))
	assert.True(t, strings.HasPrefix(out.String(), "Type,"), "header row first")
	assert.Contains(t, out.String(), "Walk")
}

func TestImportRoundTrip(t *testing.T) {
	src, _ := setupTestContext(t)
	orig := seed(t, src)

	file := filepath.Join(t.TempDir(), "habits.csv")
	require.NoError(t, (&ExportCmd{Output: file}).Run(src))

	dst, out := setupTestContext(t)
	require.NoError(t, (&ImportCmd{File: file}).Run(dst))
	assert.Contains(t, out.String(), "Imported 0 lists, 1 habits, 1 repeat patterns and 3 completions.")

	h, err := dst.Habits.GetHabit(dst.Ctx(), orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", h.Name)
	assert.Len(t, h.Completions, 3)

	// Second import only finds duplicates.
	out.Reset()
	require.NoError(t, (&ImportCmd{File: file, Atomic: true}).Run(dst))
	h, err = dst.Habits.GetHabit(dst.Ctx(), orig.ID)
	require.NoError(t, err)
	assert.Len(t, h.Completions, 3)
}

func TestImportPrintsWarnings(t *testing.T) {
	ctx, out := setupTestContext(t)

	var sb strings.Builder
	sb.WriteString("Type,ID\n")
	sb.WriteString("Reminder,not-a-row\n")
	file := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(file, []byte(sb.String()), 0644))

	require.NoError(t, (&ImportCmd{File: file}).Run(ctx))
	assert.Contains(t, out.String(), "⚠")
}

func TestStatsFormats(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx)

	require.NoError(t, (&StatsCmd{From: "2024-06-01", To: "2024-06-09", Format: "table"}).Run(ctx))
	assert.Contains(t, out.String(), "Walk")
	assert.Contains(t, out.String(), "3 of 9")

	out.Reset()
	require.NoError(t, (&StatsCmd{Habit: "Walk", From: "2024-06-01", To: "2024-06-09", Format: "json"}).Run(ctx))
	var summary stats.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	require.Len(t, summary.Habits, 1)
	assert.Equal(t, 9, summary.Habits[0].Scheduled)

	out.Reset()
	require.NoError(t, (&StatsCmd{Days: 7, Format: "yaml"}).Run(ctx))
	assert.Contains(t, out.String(), "habits:")

	assert.Error(t, (&StatsCmd{Habit: "missing", Format: "table"}).Run(ctx))
}
