package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName    ConflictType = "duplicate_habit_name"
	ConflictInvalidHabit          ConflictType = "invalid_habit"
	ConflictMissingPattern        ConflictType = "missing_pattern"
	ConflictInvalidPattern        ConflictType = "invalid_pattern"
	ConflictShadowedPattern       ConflictType = "shadowed_pattern"
	ConflictUncoveredStart        ConflictType = "uncovered_start"
	ConflictCompletionBeforeStart ConflictType = "completion_before_start"
	ConflictStaleLastCompletion   ConflictType = "stale_last_completion"
)

// Conflict represents a detected problem in stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string      // YYYY-MM-DD (if applicable)
	Items       []string    // habit names involved
	HabitIDs    []uuid.UUID // habits involved
	PatternIDs  []uuid.UUID // patterns safe to remove (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns the number of conflicts of type t.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var sb strings.Builder
	sb.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&sb, "- %s\n", conflict.Description)
	}
	return sb.String()
}

// Validator checks habits and their schedules for integrity problems.
type Validator struct {
	cal recurrence.Calendar
}

// New creates a Validator that compares days in cal.
func New(cal recurrence.Calendar) *Validator {
	return &Validator{cal: cal}
}

// ValidateHabits checks habits loaded with patterns and completions.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	var result ValidationResult
	result.Conflicts = append(result.Conflicts, v.duplicateNames(habits)...)
	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, v.validateHabit(h)...)
	}
	return result
}

// duplicateNames flags active habits sharing a case-insensitive name.
func (v *Validator) duplicateNames(habits []models.Habit) []Conflict {
	byName := make(map[string][]models.Habit)
	var names []string
	for _, h := range habits {
		if h.IsArchived {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if _, seen := byName[key]; !seen {
			names = append(names, key)
		}
		byName[key] = append(byName[key], h)
	}

	var conflicts []Conflict
	for _, key := range names {
		group := byName[key]
		if len(group) < 2 {
			continue
		}
		ids := make([]uuid.UUID, len(group))
		for i, h := range group {
			ids[i] = h.ID
		}
		conflicts = append(conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: %q (%d habits)", group[0].Name, len(group)),
			Items:       []string{group[0].Name},
			HabitIDs:    ids,
		})
	}
	return conflicts
}

func (v *Validator) validateHabit(h models.Habit) []Conflict {
	var conflicts []Conflict
	add := func(t ConflictType, date string, format string, args ...any) {
		conflicts = append(conflicts, Conflict{
			Type:        t,
			Description: fmt.Sprintf("%s: ", h.Name) + fmt.Sprintf(format, args...),
			Date:        date,
			Items:       []string{h.Name},
			HabitIDs:    []uuid.UUID{h.ID},
		})
	}

	if err := h.Validate(); err != nil {
		add(ConflictInvalidHabit, "", "%v", err)
	}
	if len(h.Patterns) == 0 {
		add(ConflictMissingPattern, "", "habit has no repeat pattern and is never scheduled")
		return conflicts
	}

	for _, p := range h.Patterns {
		if err := p.Validate(); err != nil {
			add(ConflictInvalidPattern, v.cal.DayKey(p.EffectiveFrom), "repeat pattern %s: %v", p.ID, err)
		}
	}
	conflicts = append(conflicts, v.shadowed(h)...)

	start := v.cal.Normalize(h.StartDate)
	if oldest, ok := h.OldestPattern(); ok && v.cal.Normalize(oldest.EffectiveFrom).After(start) {
		add(ConflictUncoveredStart, v.cal.DayKey(h.StartDate),
			"no repeat pattern covers %s to %s", v.cal.DayKey(h.StartDate), v.cal.DayKey(oldest.EffectiveFrom))
	}

	var last *models.Completion
	early := 0
	for i, c := range h.Completions {
		if v.cal.Normalize(c.Date).Before(start) {
			early++
		}
		if c.Completed && (last == nil || c.Date.After(last.Date)) {
			last = &h.Completions[i]
		}
	}
	if early > 0 {
		add(ConflictCompletionBeforeStart, v.cal.DayKey(h.StartDate),
			"%d completion(s) logged before the start date", early)
	}

	switch {
	case last == nil && h.LastCompletionDate != nil:
		add(ConflictStaleLastCompletion, v.cal.DayKey(*h.LastCompletionDate),
			"last completion date %s has no completed record", v.cal.DayKey(*h.LastCompletionDate))
	case last != nil && (h.LastCompletionDate == nil || v.cal.DayKey(*h.LastCompletionDate) != v.cal.DayKey(last.Date)):
		add(ConflictStaleLastCompletion, v.cal.DayKey(last.Date),
			"last completion date does not match latest completion on %s", v.cal.DayKey(last.Date))
	}
	return conflicts
}

// shadowed reports patterns that share an effective day with a newer
// pattern. Only the most recently created of them ever governs.
func (v *Validator) shadowed(h models.Habit) []Conflict {
	byDay := make(map[string][]models.RepeatPattern)
	var days []string
	for _, p := range h.Patterns {
		day := v.cal.DayKey(p.EffectiveFrom)
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], p)
	}
	sort.Strings(days)

	var conflicts []Conflict
	for _, day := range days {
		group := byDay[day]
		if len(group) < 2 {
			continue
		}
		models.SortPatternsNewestFirst(group)
		var ids []uuid.UUID
		for _, p := range group[1:] {
			ids = append(ids, p.ID)
		}
		conflicts = append(conflicts, Conflict{
			Type:        ConflictShadowedPattern,
			Description: fmt.Sprintf("%s: %d repeat pattern(s) effective %s never apply", h.Name, len(ids), day),
			Date:        day,
			Items:       []string{h.Name},
			HabitIDs:    []uuid.UUID{h.ID},
			PatternIDs:  ids,
		})
	}
	return conflicts
}

// AutoFixShadowedPatterns deletes patterns that can never govern a day.
// Returns a slice of FixActions describing what was fixed
func AutoFixShadowedPatterns(conflicts []Conflict, deleteFunc func(id uuid.UUID) error) []FixAction {
	var actions []FixAction
	for _, conflict := range conflicts {
		if conflict.Type != ConflictShadowedPattern || len(conflict.PatternIDs) == 0 {
			continue
		}

		var deleted, failed []uuid.UUID
		for _, id := range conflict.PatternIDs {
			if err := deleteFunc(id); err != nil {
				failed = append(failed, id)
				continue
			}
			deleted = append(deleted, id)
		}

		name := ""
		if len(conflict.Items) > 0 {
			name = conflict.Items[0]
		}
		switch {
		case len(deleted) > 0:
			msg := fmt.Sprintf("Removed %d shadowed repeat pattern(s) of %q effective %s", len(deleted), name, conflict.Date)
			if len(failed) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failed)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		case len(failed) > 0:
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove shadowed patterns of %q: %v", name, failed),
				SourceConflict: conflict,
			})
		}
	}
	return actions
}
