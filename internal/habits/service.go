// Package habits holds the mutation and query operations behind the CLI
// and HTTP surfaces. Every mutation fires the matching recurrence cache hook.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

// Service wraps a store and an evaluator.
type Service struct {
	store storage.Provider
	eval  *recurrence.Evaluator
	now   func() time.Time
}

func NewService(store storage.Provider, eval *recurrence.Evaluator) *Service {
	return &Service{store: store, eval: eval, now: time.Now}
}

// Uncached returns a service over the same store and clock whose evaluator
// does not memoize. Long-running processes use it so writes made by other
// processes are seen on the next query.
func (s *Service) Uncached() *Service {
	return &Service{store: s.store, eval: recurrence.NewEvaluator(s.eval.Calendar(), nil), now: s.now}
}

// Evaluator returns the evaluator backing scheduled/completed queries.
func (s *Service) Evaluator() *recurrence.Evaluator {
	return s.eval
}

// Store returns the underlying store.
func (s *Service) Store() storage.Provider {
	return s.store
}

func (s *Service) day(t time.Time) time.Time {
	return s.eval.Calendar().Normalize(t)
}

// Today returns the normalized current day.
func (s *Service) Today() time.Time {
	return s.day(s.now())
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// SetClock replaces the clock used for today and LoggedAt stamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateList adds a habit list at the end of the display order.
func (s *Service) CreateList(ctx context.Context, name, icon string) (models.HabitList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.HabitList{}, fmt.Errorf("%w: list name cannot be empty", models.ErrInvalidEntity)
	}
	lists, err := s.store.Lists(ctx)
	if err != nil {
		return models.HabitList{}, err
	}
	list := models.HabitList{ID: uuid.New(), Name: name, Icon: icon, Order: len(lists)}
	if err := s.store.SaveList(ctx, list); err != nil {
		return models.HabitList{}, err
	}
	logger.Info("List created", "id", list.ID, "name", list.Name)
	return list, nil
}

// FindList resolves a list by ID or case-insensitive name.
func (s *Service) FindList(ctx context.Context, ref string) (models.HabitList, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.store.GetList(ctx, id)
	}
	lists, err := s.store.Lists(ctx)
	if err != nil {
		return models.HabitList{}, err
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, ref) {
			return l, nil
		}
	}
	return models.HabitList{}, fmt.Errorf("list %q: %w", ref, storage.ErrNotFound)
}

// DeleteList removes the list; its habits become standalone.
func (s *Service) DeleteList(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteList(ctx, id); err != nil {
		return err
	}
	logger.Info("List deleted", "id", id)
	return nil
}

// NewHabit describes a habit to create together with its first pattern.
type NewHabit struct {
	Name           string
	Description    string
	Icon           string
	Color          []byte
	IsBadHabit     bool
	StartDate      time.Time
	IntensityLevel int
	ListID         uuid.NullUUID
	Goal           models.Goal
	FollowUp       bool
	RepeatsPerDay  int
}

// CreateHabit stores a habit and its first pattern, effective from the
// start date, in one transaction.
func (s *Service) CreateHabit(ctx context.Context, in NewHabit) (models.Habit, error) {
	if in.StartDate.IsZero() {
		in.StartDate = s.Today()
	}
	if in.IntensityLevel == 0 {
		in.IntensityLevel = constants.MinIntensityLevel
	}
	if in.RepeatsPerDay == 0 {
		in.RepeatsPerDay = 1
	}
	if in.Goal == nil {
		in.Goal = models.EveryDay()
	}

	now := s.now()
	habit := models.Habit{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Icon:           in.Icon,
		Color:          in.Color,
		IsBadHabit:     in.IsBadHabit,
		StartDate:      s.day(in.StartDate),
		IntensityLevel: in.IntensityLevel,
		ListID:         in.ListID,
	}
	pattern := models.RepeatPattern{
		ID:            uuid.New(),
		HabitID:       habit.ID,
		EffectiveFrom: habit.StartDate,
		CreationDate:  now,
		FollowUp:      in.FollowUp,
		RepeatsPerDay: in.RepeatsPerDay,
		Goal:          in.Goal,
	}
	if err := habit.Validate(); err != nil {
		return models.Habit{}, err
	}
	if err := pattern.Validate(); err != nil {
		return models.Habit{}, err
	}

	err := s.store.InTx(ctx, func(tx storage.Repository) error {
		existing, err := tx.Habits(ctx, storage.HabitFilter{IncludeArchived: true})
		if err != nil {
			return err
		}
		habit.Order = len(existing)
		if err := tx.SaveHabit(ctx, habit); err != nil {
			return err
		}
		return tx.SavePattern(ctx, pattern)
	})
	if err != nil {
		return models.Habit{}, err
	}

	habit.Patterns = []models.RepeatPattern{pattern}
	s.eval.Invalidator().HabitEdited(habit.ID)
	logger.Info("Habit created", "id", habit.ID, "name", habit.Name)
	return habit, nil
}

// GetHabit loads a habit with its patterns and completions.
func (s *Service) GetHabit(ctx context.Context, id uuid.UUID) (models.Habit, error) {
	return s.store.GetHabit(ctx, id)
}

// FindHabit resolves a habit by full ID, unique ID prefix, or
// case-insensitive name.
func (s *Service) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.store.GetHabit(ctx, id)
	}

	habits, err := s.store.Habits(ctx, storage.HabitFilter{IncludeArchived: true})
	if err != nil {
		return models.Habit{}, err
	}
	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return s.store.GetHabit(ctx, h.ID)
		}
		if len(ref) >= 4 && strings.HasPrefix(h.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 1:
		return s.store.GetHabit(ctx, matches[0].ID)
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, storage.ErrNotFound)
	default:
		return models.Habit{}, fmt.Errorf("habit reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// Habits lists habits with patterns and completions loaded.
func (s *Service) Habits(ctx context.Context, filter storage.HabitFilter) ([]models.Habit, error) {
	filter.WithPatterns = true
	filter.WithCompletions = true
	return s.store.Habits(ctx, filter)
}

// UpdateHabit saves edited scalar fields of a habit.
func (s *Service) UpdateHabit(ctx context.Context, habit models.Habit) error {
	habit.StartDate = s.day(habit.StartDate)
	if err := habit.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveHabit(ctx, habit); err != nil {
		return err
	}
	s.eval.Invalidator().HabitEdited(habit.ID)
	return nil
}

// SetArchived archives or restores a habit.
func (s *Service) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	habit, err := s.store.GetHabit(ctx, id)
	if err != nil {
		return err
	}
	habit.IsArchived = archived
	return s.UpdateHabit(ctx, habit)
}

// DeleteHabit removes a habit with its patterns and completions.
func (s *Service) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteHabit(ctx, id); err != nil {
		return err
	}
	s.eval.Invalidator().HabitEdited(id)
	logger.Info("Habit deleted", "id", id)
	return nil
}

// Schedule installs a pattern effective from the given day. A pattern with
// the same effective day is replaced.
func (s *Service) Schedule(ctx context.Context, habitID uuid.UUID, effectiveFrom time.Time, goal models.Goal, followUp bool, repeatsPerDay int) (models.RepeatPattern, error) {
	if repeatsPerDay == 0 {
		repeatsPerDay = 1
	}
	pattern := models.RepeatPattern{
		ID:            uuid.New(),
		HabitID:       habitID,
		EffectiveFrom: s.day(effectiveFrom),
		CreationDate:  s.now(),
		FollowUp:      followUp,
		RepeatsPerDay: repeatsPerDay,
		Goal:          goal,
	}
	if err := pattern.Validate(); err != nil {
		return models.RepeatPattern{}, err
	}

	err := s.store.InTx(ctx, func(tx storage.Repository) error {
		habit, err := tx.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		for _, p := range habit.Patterns {
			if s.day(p.EffectiveFrom).Equal(pattern.EffectiveFrom) {
				pattern.ID = p.ID
			}
		}
		return tx.SavePattern(ctx, pattern)
	})
	if err != nil {
		return models.RepeatPattern{}, err
	}

	s.eval.Invalidator().PatternEdited(habitID)
	logger.Info("Pattern scheduled", "habit", habitID, "effective_from", pattern.EffectiveFrom.Format(constants.DateFormat))
	return pattern, nil
}

// Unschedule deletes a pattern. When the oldest pattern goes, the new
// oldest takes over from the habit's start date.
func (s *Service) Unschedule(ctx context.Context, patternID uuid.UUID) error {
	var habitID uuid.UUID
	err := s.store.InTx(ctx, func(tx storage.Repository) error {
		pattern, err := tx.GetPattern(ctx, patternID)
		if err != nil {
			return err
		}
		habitID = pattern.HabitID

		habit, err := tx.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		oldest, _ := habit.OldestPattern()

		if err := tx.DeletePattern(ctx, patternID); err != nil {
			return err
		}
		if oldest.ID != patternID {
			return nil
		}

		habit.Patterns = removePattern(habit.Patterns, patternID)
		next, ok := habit.OldestPattern()
		if !ok {
			return nil
		}
		next.EffectiveFrom = habit.StartDate
		return tx.SavePattern(ctx, next)
	})
	if err != nil {
		return err
	}

	s.eval.Invalidator().PatternDeleted(habitID)
	return nil
}

func removePattern(patterns []models.RepeatPattern, id uuid.UUID) []models.RepeatPattern {
	out := patterns[:0:0]
	for _, p := range patterns {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// MarkOptions tunes a logged completion.
type MarkOptions struct {
	Duration int
	NotDone  bool
}

// Mark logs one completion record for the day. Habits with several
// repeats per day need one record per repeat.
func (s *Service) Mark(ctx context.Context, habitID uuid.UUID, date time.Time, opts MarkOptions) (models.Completion, error) {
	if opts.Duration < 0 {
		return models.Completion{}, fmt.Errorf("%w: duration cannot be negative", models.ErrInvalidEntity)
	}
	completion := models.Completion{
		ID:        uuid.New(),
		HabitID:   habitID,
		Date:      s.day(date),
		LoggedAt:  s.now(),
		Duration:  opts.Duration,
		Completed: !opts.NotDone,
	}

	err := s.store.InTx(ctx, func(tx storage.Repository) error {
		if err := tx.SaveCompletion(ctx, completion); err != nil {
			return err
		}
		return s.refreshLastCompletion(ctx, tx, habitID)
	})
	if err != nil {
		return models.Completion{}, err
	}

	s.eval.Invalidator().CompletionToggled(habitID)
	return completion, nil
}

// Toggle clears every record on the day when one exists, and logs a single
// completion otherwise. It reports whether the day ends up completed.
func (s *Service) Toggle(ctx context.Context, habitID uuid.UUID, date time.Time) (bool, error) {
	day := s.day(date)
	existing, err := s.store.Completions(ctx, storage.CompletionFilter{
		HabitID: uuid.NullUUID{UUID: habitID, Valid: true},
		From:    day,
		To:      day.AddDate(0, 0, 1),
	})
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		_, err := s.Mark(ctx, habitID, day, MarkOptions{})
		return err == nil, err
	}

	err = s.store.InTx(ctx, func(tx storage.Repository) error {
		for _, c := range existing {
			if err := tx.DeleteCompletion(ctx, c.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		return s.refreshLastCompletion(ctx, tx, habitID)
	})
	if err != nil {
		return false, err
	}
	s.eval.Invalidator().CompletionToggled(habitID)
	return false, nil
}

// refreshLastCompletion keeps the denormalized LastCompletionDate current.
func (s *Service) refreshLastCompletion(ctx context.Context, tx storage.Repository, habitID uuid.UUID) error {
	habit, err := tx.GetHabit(ctx, habitID)
	if err != nil {
		return err
	}
	var last *time.Time
	for _, c := range habit.Completions {
		if c.Completed && (last == nil || c.Date.After(*last)) {
			d := c.Date
			last = &d
		}
	}
	habit.LastCompletionDate = last
	habit.Patterns, habit.Completions = nil, nil
	return tx.SaveHabit(ctx, habit)
}
