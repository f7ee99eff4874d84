package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

var ErrInvalidEntity = errors.New("invalid entity")

// HabitList groups habits for display.
type HabitList struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color []byte    `json:"color,omitempty"`
	Icon  string    `json:"icon,omitempty"`
	Order int       `json:"order"`
}

// Habit represents a recurring practice to track
type Habit struct {
	ID                 uuid.UUID     `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	Icon               string        `json:"icon,omitempty"`
	Color              []byte        `json:"color,omitempty"`
	IsBadHabit         bool          `json:"is_bad_habit"`
	IsArchived         bool          `json:"is_archived"`
	Order              int           `json:"order"`
	StartDate          time.Time     `json:"start_date"`
	IntensityLevel     int           `json:"intensity_level"`
	LastCompletionDate *time.Time    `json:"last_completion_date,omitempty"`
	ListID             uuid.NullUUID `json:"list_id"`

	// Loaded on demand by the store.
	Patterns    []RepeatPattern `json:"patterns,omitempty"`
	Completions []Completion    `json:"completions,omitempty"`
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: habit name cannot be empty", ErrInvalidEntity)
	}
	if h.IntensityLevel < constants.MinIntensityLevel || h.IntensityLevel > constants.MaxIntensityLevel {
		return fmt.Errorf("%w: intensity level must be between %d and %d, got %d",
			ErrInvalidEntity, constants.MinIntensityLevel, constants.MaxIntensityLevel, h.IntensityLevel)
	}
	if h.StartDate.IsZero() {
		return fmt.Errorf("%w: habit start date is required", ErrInvalidEntity)
	}
	return nil
}

// RepeatPattern is a time-bounded recurrence rule. It governs every day from
// EffectiveFrom until a newer pattern of the same habit takes effect.
type RepeatPattern struct {
	ID            uuid.UUID `json:"id"`
	HabitID       uuid.UUID `json:"habit_id"`
	EffectiveFrom time.Time `json:"effective_from"`
	CreationDate  time.Time `json:"creation_date"`
	FollowUp      bool      `json:"follow_up"`
	RepeatsPerDay int       `json:"repeats_per_day"`
	Goal          Goal      `json:"-"`
}

func (p RepeatPattern) Validate() error {
	if p.RepeatsPerDay < 1 {
		return fmt.Errorf("%w: repeats per day must be at least 1, got %d", ErrInvalidEntity, p.RepeatsPerDay)
	}
	if p.Goal == nil {
		return fmt.Errorf("%w: repeat pattern %s has no goal", ErrInvalidEntity, p.ID)
	}
	return p.Goal.Validate()
}

// Completion records one logged action for a habit on a scheduled day.
type Completion struct {
	ID        uuid.UUID `json:"id"`
	HabitID   uuid.UUID `json:"habit_id"`
	Date      time.Time `json:"date"`
	LoggedAt  time.Time `json:"logged_at"`
	Duration  int       `json:"duration,omitempty"` // minutes
	Completed bool      `json:"completed"`
}

// SortPatternsNewestFirst orders patterns by EffectiveFrom descending, ties
// broken by the most recent CreationDate.
func SortPatternsNewestFirst(patterns []RepeatPattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		if !patterns[i].EffectiveFrom.Equal(patterns[j].EffectiveFrom) {
			return patterns[i].EffectiveFrom.After(patterns[j].EffectiveFrom)
		}
		return patterns[i].CreationDate.After(patterns[j].CreationDate)
	})
}

// OldestPattern returns the pattern with the earliest EffectiveFrom.
func (h Habit) OldestPattern() (RepeatPattern, bool) {
	if len(h.Patterns) == 0 {
		return RepeatPattern{}, false
	}
	oldest := h.Patterns[0]
	for _, p := range h.Patterns[1:] {
		if p.EffectiveFrom.Before(oldest.EffectiveFrom) {
			oldest = p
		}
	}
	return oldest, true
}
