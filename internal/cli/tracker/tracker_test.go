package tracker

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	apperrors "github.com/eliasosarumwense/Habital-sub003/internal/errors"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habital.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })

	eval := recurrence.NewEvaluator(recurrence.NewCalendar(time.UTC, time.Sunday), recurrence.NewMemoCache())
	svc := habits.NewService(store, eval)
	svc.SetClock(func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) })

	var out bytes.Buffer
	return &cli.Context{Store: store, Habits: svc, Out: &out, Yes: true}, &out
}

func TestHabitAddAndList(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&ListAddCmd{Name: "Morning"}).Run(ctx))
	add := &HabitAddCmd{
		Name:      "Stretch",
		Start:     "2024-06-01",
		Intensity: 2,
		List:      "morning",
		GoalFlags: cli.GoalFlags{Repeat: "weekly", Every: 1, Days: "mon,thu", Repeats: 1},
	}
	require.NoError(t, add.Run(ctx))
	assert.Contains(t, out.String(), "weekly on Mon,Thu")

	err := (&HabitAddCmd{Name: "stretch", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx)
	assert.ErrorContains(t, err, "already exists")

	out.Reset()
	require.NoError(t, (&HabitLsCmd{List: "Morning"}).Run(ctx))
	assert.Contains(t, out.String(), "Stretch")

	h, err := ctx.Habits.FindHabit(ctx.Ctx(), "Stretch")
	require.NoError(t, err)
	assert.Equal(t, 2, h.IntensityLevel)
	assert.True(t, h.ListID.Valid)
}

func TestHabitEditArchiveDelete(t *testing.T) {
	ctx, _ := setupTestContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx))

	name, color := "Read more", "#ff8800"
	require.NoError(t, (&HabitEditCmd{Habit: "Read", Name: &name, Color: &color}).Run(ctx))
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), "Read more")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x88, 0x00}, h.Color)

	require.NoError(t, (&HabitArchiveCmd{Habit: "Read more"}).Run(ctx))
	h, err = ctx.Habits.GetHabit(ctx.Ctx(), h.ID)
	require.NoError(t, err)
	assert.True(t, h.IsArchived)

	require.NoError(t, (&HabitDeleteCmd{Habit: "Read more"}).Run(ctx))
	_, err = ctx.Habits.GetHabit(ctx.Ctx(), h.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHabitScheduleAndUnschedule(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Run", Start: "2024-06-01", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx))

	sched := &HabitScheduleCmd{Habit: "Run", From: "2024-06-05", GoalFlags: cli.GoalFlags{Every: 2, Repeats: 1}}
	require.NoError(t, sched.Run(ctx))
	assert.Contains(t, out.String(), "every 2 days from 2024-06-05")

	err := (&HabitScheduleCmd{Habit: "Run", From: "2024-05-01", GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidEntity)

	h, err := ctx.Habits.FindHabit(ctx.Ctx(), "Run")
	require.NoError(t, err)
	require.Len(t, h.Patterns, 2)
	newest := h.Patterns[0]

	require.NoError(t, (&HabitUnscheduleCmd{Habit: "Run", Pattern: newest.ID.String()[:8]}).Run(ctx))
	h, err = ctx.Habits.GetHabit(ctx.Ctx(), h.ID)
	require.NoError(t, err)
	require.Len(t, h.Patterns, 1)

	err = (&HabitUnscheduleCmd{Habit: "Run", Pattern: h.Patterns[0].ID.String()}).Run(ctx)
	assert.ErrorContains(t, err, "only repeat pattern")
}

func TestMarkTogglesAndRepeats(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Water", Start: "2024-06-01", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 3}}).Run(ctx))

	require.NoError(t, (&MarkCmd{Habit: "Water"}).Run(ctx))
	assert.Contains(t, out.String(), `Marked habit "Water" for 2024-06-10`)

	require.NoError(t, (&MarkCmd{Habit: "Water"}).Run(ctx))
	assert.Contains(t, out.String(), `Unmarked habit "Water" for 2024-06-10`)

	require.NoError(t, (&MarkCmd{Habit: "Water", Repeat: true}).Run(ctx))
	require.NoError(t, (&MarkCmd{Habit: "Water", Duration: 5}).Run(ctx))
	assert.Contains(t, out.String(), "(2/3)")

	h, err := ctx.Habits.FindHabit(ctx.Ctx(), "Water")
	require.NoError(t, err)
	require.Len(t, h.Completions, 2)
	require.NotNil(t, h.LastCompletionDate)
}

func TestTodayAndCalendar(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Journal", Start: "2024-06-01", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx))
	require.NoError(t, (&MarkCmd{Habit: "Journal", Date: "yesterday"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&TodayCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "2024-06-10")
	assert.Contains(t, out.String(), "Journal")

	out.Reset()
	require.NoError(t, (&CalendarCmd{Habit: "Journal", Days: 14}).Run(ctx))
	assert.Contains(t, out.String(), "2024-06-02")
	assert.Contains(t, out.String(), "2024-06-09")

	err := (&CalendarCmd{Habit: "Journal", From: "2024-06-10", To: "2024-06-01"}).Run(ctx)
	assert.Error(t, err)
}

func TestLists(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&ListAddCmd{Name: "Evening", Icon: "moon"}).Run(ctx))
	assert.Error(t, (&ListAddCmd{Name: "evening"}).Run(ctx))

	require.NoError(t, (&HabitAddCmd{Name: "Floss", List: "Evening", Intensity: 1, GoalFlags: cli.GoalFlags{Every: 1, Repeats: 1}}).Run(ctx))

	out.Reset()
	require.NoError(t, (&ListLsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "moon Evening (1 habits)")

	require.NoError(t, (&ListDeleteCmd{Ref: "Evening"}).Run(ctx))
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), "Floss")
	require.NoError(t, err)
	assert.False(t, h.ListID.Valid)
}
