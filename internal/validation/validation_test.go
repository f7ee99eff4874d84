package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func newValidator() *Validator {
	return New(recurrence.NewCalendar(time.UTC, time.Monday))
}

func pattern(habitID uuid.UUID, effective time.Time, created time.Time) models.RepeatPattern {
	return models.RepeatPattern{
		ID:            uuid.New(),
		HabitID:       habitID,
		EffectiveFrom: effective,
		CreationDate:  created,
		RepeatsPerDay: 1,
		Goal:          models.EveryDay(),
	}
}

func habit(name string) models.Habit {
	h := models.Habit{ID: uuid.New(), Name: name, StartDate: day(1), IntensityLevel: 1}
	h.Patterns = []models.RepeatPattern{pattern(h.ID, day(1), day(1))}
	return h
}

func TestValidateHabits_NoConflicts(t *testing.T) {
	result := newValidator().ValidateHabits([]models.Habit{habit("Read"), habit("Run")})
	if result.HasConflicts() {
		t.Errorf("Expected no conflicts, got: %s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("Unexpected report: %q", result.FormatReport())
	}
}

func TestValidateHabits_DuplicateNames(t *testing.T) {
	archived := habit("read")
	archived.IsArchived = true

	result := newValidator().ValidateHabits([]models.Habit{habit("Read"), habit("read "), habit("Run"), archived})
	if got := result.Count(ConflictDuplicateHabitName); got != 1 {
		t.Fatalf("Expected 1 duplicate name conflict, got %d", got)
	}
	if ids := result.Conflicts[0].HabitIDs; len(ids) != 2 {
		t.Errorf("Expected 2 habits in conflict, got %d", len(ids))
	}
}

func TestValidateHabits_MissingAndInvalidPatterns(t *testing.T) {
	bare := habit("Bare")
	bare.Patterns = nil

	broken := habit("Broken")
	broken.Patterns[0].RepeatsPerDay = 0

	result := newValidator().ValidateHabits([]models.Habit{bare, broken})
	if result.Count(ConflictMissingPattern) != 1 {
		t.Error("Expected missing pattern conflict")
	}
	if result.Count(ConflictInvalidPattern) != 1 {
		t.Error("Expected invalid pattern conflict")
	}
}

func TestValidateHabits_InvalidHabit(t *testing.T) {
	h := habit("Loud")
	h.IntensityLevel = 99

	result := newValidator().ValidateHabits([]models.Habit{h})
	if result.Count(ConflictInvalidHabit) != 1 {
		t.Errorf("Expected invalid habit conflict, got: %s", result.FormatReport())
	}
}

func TestValidateHabits_ShadowedPatterns(t *testing.T) {
	h := habit("Stretch")
	older := pattern(h.ID, day(5), day(2))
	newer := pattern(h.ID, day(5).Add(3*time.Hour), day(4))
	h.Patterns = append(h.Patterns, older, newer)

	result := newValidator().ValidateHabits([]models.Habit{h})
	if result.Count(ConflictShadowedPattern) != 1 {
		t.Fatalf("Expected shadowed pattern conflict, got: %s", result.FormatReport())
	}
	c := result.Conflicts[0]
	if len(c.PatternIDs) != 1 || c.PatternIDs[0] != older.ID {
		t.Errorf("Expected only the older pattern to be removable, got %v", c.PatternIDs)
	}
	if c.Date != "2024-06-05" {
		t.Errorf("Expected conflict date 2024-06-05, got %s", c.Date)
	}
}

func TestValidateHabits_UncoveredStartAndEarlyCompletions(t *testing.T) {
	h := habit("Swim")
	h.StartDate = day(3)
	h.Patterns[0].EffectiveFrom = day(6)
	h.Completions = []models.Completion{{ID: uuid.New(), HabitID: h.ID, Date: day(2)}}

	result := newValidator().ValidateHabits([]models.Habit{h})
	if result.Count(ConflictUncoveredStart) != 1 {
		t.Error("Expected uncovered start conflict")
	}
	if result.Count(ConflictCompletionBeforeStart) != 1 {
		t.Error("Expected completion before start conflict")
	}
}

func TestValidateHabits_StaleLastCompletion(t *testing.T) {
	h := habit("Floss")
	h.Completions = []models.Completion{
		{ID: uuid.New(), HabitID: h.ID, Date: day(3), Completed: true},
		{ID: uuid.New(), HabitID: h.ID, Date: day(4), Completed: false},
	}
	last := day(3)
	h.LastCompletionDate = &last

	v := newValidator()
	if result := v.ValidateHabits([]models.Habit{h}); result.HasConflicts() {
		t.Errorf("Expected no conflicts, got: %s", result.FormatReport())
	}

	wrong := day(4)
	h.LastCompletionDate = &wrong
	if result := v.ValidateHabits([]models.Habit{h}); result.Count(ConflictStaleLastCompletion) != 1 {
		t.Error("Expected stale last completion conflict")
	}

	h.Completions = nil
	if result := v.ValidateHabits([]models.Habit{h}); result.Count(ConflictStaleLastCompletion) != 1 {
		t.Error("Expected stale last completion conflict without completions")
	}
}

func TestAutoFixShadowedPatterns(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	conflicts := []Conflict{
		{Type: ConflictDuplicateHabitName, Items: []string{"Read"}},
		{Type: ConflictShadowedPattern, Items: []string{"Run"}, Date: "2024-06-05", PatternIDs: []uuid.UUID{a, b}},
	}

	deleted := make(map[uuid.UUID]bool)
	actions := AutoFixShadowedPatterns(conflicts, func(id uuid.UUID) error {
		deleted[id] = true
		return nil
	})

	if len(actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(actions))
	}
	if !deleted[a] || !deleted[b] {
		t.Error("Expected both shadowed patterns to be deleted")
	}
	if !strings.Contains(actions[0].Action, "Removed 2 shadowed") {
		t.Errorf("Unexpected action: %s", actions[0].Action)
	}
}

func TestAutoFixShadowedPatterns_HandlesDeleteErrors(t *testing.T) {
	id := uuid.New()
	conflicts := []Conflict{{Type: ConflictShadowedPattern, Items: []string{"Run"}, PatternIDs: []uuid.UUID{id}}}

	actions := AutoFixShadowedPatterns(conflicts, func(uuid.UUID) error {
		return errors.New("locked")
	})
	if len(actions) != 1 || !strings.HasPrefix(actions[0].Action, "Failed") {
		t.Errorf("Expected a failure action, got %+v", actions)
	}
}
