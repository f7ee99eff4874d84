// Package storagetest holds the behavior tests every storage.Provider must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewHabit returns a valid habit starting on start.
func NewHabit(name string, start time.Time) models.Habit {
	return models.Habit{
		ID:             uuid.New(),
		Name:           name,
		StartDate:      start,
		IntensityLevel: 1,
	}
}

// NewPattern returns a pattern for habit effective from eff.
func NewPattern(habitID uuid.UUID, eff time.Time, goal models.Goal) models.RepeatPattern {
	return models.RepeatPattern{
		ID:            uuid.New(),
		HabitID:       habitID,
		EffectiveFrom: eff,
		CreationDate:  eff,
		RepeatsPerDay: 1,
		Goal:          goal,
	}
}

// NewCompletion returns a completed record for habit on date.
func NewCompletion(habitID uuid.UUID, date time.Time) models.Completion {
	return models.Completion{
		ID:        uuid.New(),
		HabitID:   habitID,
		Date:      date,
		LoggedAt:  date.Add(9 * time.Hour),
		Completed: true,
	}
}

func reset(t *testing.T, s storage.Provider) {
	t.Helper()
	ctx := context.Background()
	for _, kind := range []storage.Kind{storage.KindCompletion, storage.KindPattern, storage.KindHabit, storage.KindList} {
		_, err := s.DeleteAll(ctx, kind)
		require.NoError(t, err)
	}
}

// Run exercises s. The store must already be initialized.
func Run(t *testing.T, s storage.Provider) {
	tests := []struct {
		name string
		fn   func(*testing.T, storage.Provider)
	}{
		{"Lists", testLists},
		{"HabitRoundTrip", testHabitRoundTrip},
		{"HabitFilters", testHabitFilters},
		{"GoalVariants", testGoalVariants},
		{"CompletionFilters", testCompletionFilters},
		{"DeleteHabitCascades", testDeleteHabitCascades},
		{"OrphanCompletions", testOrphanCompletions},
		{"InTxRollback", testInTxRollback},
		{"DeleteAll", testDeleteAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t, s)
			tt.fn(t, s)
		})
	}
}

func testLists(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	list := models.HabitList{ID: uuid.New(), Name: "Morning", Color: []byte{0x01, 0xff}, Icon: "sun.max", Order: 2}
	require.NoError(t, s.SaveList(ctx, list))

	got, err := s.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	list.Name = "Mornings"
	require.NoError(t, s.SaveList(ctx, list))
	lists, err := s.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Mornings", lists[0].Name)

	h := NewHabit("Stretch", day(2024, 1, 1))
	h.ListID = uuid.NullUUID{UUID: list.ID, Valid: true}
	require.NoError(t, s.SaveHabit(ctx, h))

	require.NoError(t, s.DeleteList(ctx, list.ID))
	_, err = s.GetList(ctx, list.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	got2, err := s.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, got2.ListID.Valid, "habit should be standalone after its list is deleted")

	assert.True(t, errors.Is(s.DeleteList(ctx, list.ID), storage.ErrNotFound))
}

func testHabitRoundTrip(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	last := day(2024, 2, 3)
	h := models.Habit{
		ID:                 uuid.New(),
		Name:               `Say "Hi", Bob`,
		Description:        "greet people",
		Icon:               "😀",
		Color:              []byte("blue"),
		IsBadHabit:         true,
		Order:              4,
		StartDate:          day(2024, 1, 1),
		IntensityLevel:     3,
		LastCompletionDate: &last,
	}
	require.NoError(t, s.SaveHabit(ctx, h))
	p := NewPattern(h.ID, h.StartDate, models.EveryDay())
	require.NoError(t, s.SavePattern(ctx, p))
	c := NewCompletion(h.ID, day(2024, 2, 3))
	require.NoError(t, s.SaveCompletion(ctx, c))

	got, err := s.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Name, got.Name)
	assert.Equal(t, h.Description, got.Description)
	assert.Equal(t, h.Icon, got.Icon)
	assert.Equal(t, h.Color, got.Color)
	assert.True(t, got.IsBadHabit)
	assert.False(t, got.IsArchived)
	assert.Equal(t, 4, got.Order)
	assert.Equal(t, 3, got.IntensityLevel)
	assert.True(t, got.StartDate.Equal(h.StartDate))
	require.NotNil(t, got.LastCompletionDate)
	assert.True(t, got.LastCompletionDate.Equal(last))
	require.Len(t, got.Patterns, 1)
	assert.Equal(t, models.EveryDay(), got.Patterns[0].Goal)
	require.Len(t, got.Completions, 1)
	assert.True(t, got.Completions[0].Date.Equal(c.Date))
	assert.True(t, got.Completions[0].Completed)

	h.IsArchived = true
	h.LastCompletionDate = nil
	require.NoError(t, s.SaveHabit(ctx, h))
	got, err = s.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
	assert.Nil(t, got.LastCompletionDate)

	_, err = s.GetHabit(ctx, uuid.New())
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func testHabitFilters(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	list := models.HabitList{ID: uuid.New(), Name: "Health"}
	require.NoError(t, s.SaveList(ctx, list))

	inList := NewHabit("Run", day(2024, 1, 1))
	inList.ListID = uuid.NullUUID{UUID: list.ID, Valid: true}
	standalone := NewHabit("Read", day(2024, 1, 1))
	standalone.Order = 1
	archived := NewHabit("Smoke", day(2024, 1, 1))
	archived.IsArchived = true
	for _, h := range []models.Habit{inList, standalone, archived} {
		require.NoError(t, s.SaveHabit(ctx, h))
	}

	active, err := s.Habits(ctx, storage.HabitFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := s.Habits(ctx, storage.HabitFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byList, err := s.Habits(ctx, storage.HabitFilter{ListID: uuid.NullUUID{UUID: list.ID, Valid: true}})
	require.NoError(t, err)
	require.Len(t, byList, 1)
	assert.Equal(t, inList.ID, byList[0].ID)

	alone, err := s.Habits(ctx, storage.HabitFilter{Standalone: true})
	require.NoError(t, err)
	require.Len(t, alone, 1)
	assert.Equal(t, standalone.ID, alone[0].ID)
	assert.Nil(t, alone[0].Patterns)

	limited, err := s.Habits(ctx, storage.HabitFilter{IncludeArchived: true, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func testGoalVariants(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	h := NewHabit("Gym", day(2024, 1, 1))
	require.NoError(t, s.SaveHabit(ctx, h))

	rotation := make([]bool, 14)
	rotation[1], rotation[10] = true, true
	goals := []models.Goal{
		models.EveryXDays(3),
		models.DailyGoal{Pattern: models.DailySpecificDays, Days: models.NewRotationMask(rotation)},
		models.WeeklyGoal{Pattern: models.WeeklyWeekInterval, Interval: 2, Weekdays: models.NewWeekdayMask(time.Monday, time.Friday)},
		models.MonthlyGoal{Pattern: models.MonthlyEveryMonth, Days: models.NewMonthDayMask(1, 15, 31)},
	}
	for i, g := range goals {
		p := NewPattern(h.ID, day(2024, time.Month(i+1), 1), g)
		p.FollowUp = i%2 == 0
		p.RepeatsPerDay = i + 1
		require.NoError(t, s.SavePattern(ctx, p))

		got, err := s.GetPattern(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, g, got.Goal)
		assert.Equal(t, p.FollowUp, got.FollowUp)
		assert.Equal(t, p.RepeatsPerDay, got.RepeatsPerDay)
	}

	patterns, err := s.Patterns(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, patterns, 4)
	assert.True(t, patterns[0].EffectiveFrom.Equal(day(2024, 4, 1)), "newest pattern first")

	require.NoError(t, s.DeletePattern(ctx, patterns[0].ID))
	assert.True(t, errors.Is(s.DeletePattern(ctx, patterns[0].ID), storage.ErrNotFound))
}

func testCompletionFilters(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	h := NewHabit("Water", day(2024, 1, 1))
	require.NoError(t, s.SaveHabit(ctx, h))
	for d := 1; d <= 5; d++ {
		require.NoError(t, s.SaveCompletion(ctx, NewCompletion(h.ID, day(2024, 3, d))))
	}
	other := NewCompletion(uuid.New(), day(2024, 3, 2))
	require.NoError(t, s.SaveCompletion(ctx, other))

	habitID := uuid.NullUUID{UUID: h.ID, Valid: true}

	all, err := s.Completions(ctx, storage.CompletionFilter{HabitID: habitID})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.True(t, all[0].Date.Before(all[4].Date))

	ranged, err := s.Completions(ctx, storage.CompletionFilter{HabitID: habitID, From: day(2024, 3, 2), To: day(2024, 3, 4)})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	exact, err := s.Completions(ctx, storage.CompletionFilter{HabitID: habitID, Date: day(2024, 3, 3)})
	require.NoError(t, err)
	assert.Len(t, exact, 1)

	onDay, err := s.Completions(ctx, storage.CompletionFilter{Date: day(2024, 3, 2)})
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	limited, err := s.Completions(ctx, storage.CompletionFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	require.NoError(t, s.DeleteCompletion(ctx, all[0].ID))
	assert.True(t, errors.Is(s.DeleteCompletion(ctx, all[0].ID), storage.ErrNotFound))
}

func testDeleteHabitCascades(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	h := NewHabit("Meditate", day(2024, 1, 1))
	require.NoError(t, s.SaveHabit(ctx, h))
	require.NoError(t, s.SavePattern(ctx, NewPattern(h.ID, h.StartDate, models.EveryDay())))
	require.NoError(t, s.SaveCompletion(ctx, NewCompletion(h.ID, day(2024, 1, 2))))

	require.NoError(t, s.DeleteHabit(ctx, h.ID))

	for _, kind := range []storage.Kind{storage.KindHabit, storage.KindPattern, storage.KindCompletion} {
		n, err := s.Count(ctx, kind)
		require.NoError(t, err)
		assert.Zero(t, n, kind)
	}
	assert.True(t, errors.Is(s.DeleteHabit(ctx, h.ID), storage.ErrNotFound))
}

func testOrphanCompletions(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	h := NewHabit("Floss", day(2024, 1, 1))
	require.NoError(t, s.SaveHabit(ctx, h))
	require.NoError(t, s.SaveCompletion(ctx, NewCompletion(h.ID, day(2024, 1, 2))))
	orphan := NewCompletion(uuid.New(), day(2024, 1, 3))
	require.NoError(t, s.SaveCompletion(ctx, orphan))

	orphans, err := s.OrphanCompletions(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
}

func testInTxRollback(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	boom := errors.New("boom")

	h := NewHabit("Journal", day(2024, 1, 1))
	err := s.InTx(ctx, func(tx storage.Repository) error {
		if err := tx.SaveHabit(ctx, h); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	_, err = s.GetHabit(ctx, h.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.InTx(ctx, func(tx storage.Repository) error {
		if err := tx.SaveHabit(ctx, h); err != nil {
			return err
		}
		return tx.SavePattern(ctx, NewPattern(h.ID, h.StartDate, models.EveryDay()))
	}))
	got, err := s.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, got.Patterns, 1)
}

func testDeleteAll(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	list := models.HabitList{ID: uuid.New(), Name: "L"}
	require.NoError(t, s.SaveList(ctx, list))
	h := NewHabit("H", day(2024, 1, 1))
	h.ListID = uuid.NullUUID{UUID: list.ID, Valid: true}
	require.NoError(t, s.SaveHabit(ctx, h))
	require.NoError(t, s.SaveCompletion(ctx, NewCompletion(h.ID, day(2024, 1, 1))))

	n, err := s.DeleteAll(ctx, storage.KindList)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	habits, err := s.Count(ctx, storage.KindHabit)
	require.NoError(t, err)
	assert.Equal(t, 1, habits)

	n, err = s.DeleteAll(ctx, storage.KindHabit)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	completions, err := s.Count(ctx, storage.KindCompletion)
	require.NoError(t, err)
	assert.Zero(t, completions)

	_, err = s.DeleteAll(ctx, storage.Kind("Unknown"))
	assert.Error(t, err)
}
