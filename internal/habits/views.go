package habits

import (
	"context"
	"fmt"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

// DayItem is one habit's state on a given day.
type DayItem struct {
	Habit     models.Habit
	Scheduled bool
	Completed bool
	Count     int
	Required  int
	// Backlog is the earliest unresolved scheduled day carried forward by
	// follow-up, if any.
	Backlog *time.Time
}

// Day returns every active habit scheduled or completed on date.
func (s *Service) Day(ctx context.Context, date time.Time) ([]DayItem, error) {
	day := s.day(date)
	habits, err := s.Habits(ctx, storage.HabitFilter{})
	if err != nil {
		return nil, err
	}

	var items []DayItem
	for _, h := range habits {
		item := s.Item(h, day)
		if !item.Scheduled && item.Count == 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Item evaluates one habit on date. The habit must carry its patterns and
// completions.
func (s *Service) Item(h models.Habit, date time.Time) DayItem {
	day := s.day(date)
	item := DayItem{
		Habit:     h,
		Scheduled: s.eval.IsScheduled(h, day),
		Completed: s.eval.IsCompleted(h, day),
		Count:     s.eval.CompletedCount(h, day),
		Required:  1,
	}
	if p, ok := s.eval.GoverningPattern(h, day); ok {
		item.Required = max(p.RepeatsPerDay, 1)
	}
	if b, ok := s.eval.Backlog(h, day); ok {
		item.Backlog = &b
	}
	return item
}

// CalendarDay is one cell of a habit calendar.
type CalendarDay struct {
	Date      time.Time `json:"date"`
	Scheduled bool      `json:"scheduled"`
	Completed bool      `json:"completed"`
	Count     int       `json:"count"`
}

// Calendar evaluates the habit on every day in [from, to].
func (s *Service) Calendar(ctx context.Context, habit models.Habit, from, to time.Time) ([]CalendarDay, error) {
	from, to = s.day(from), s.day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("calendar range ends (%s) before it starts (%s)",
			s.eval.Calendar().DayKey(to), s.eval.Calendar().DayKey(from))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var days []CalendarDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, CalendarDay{
			Date:      d,
			Scheduled: s.eval.IsScheduled(habit, d),
			Completed: s.eval.IsCompleted(habit, d),
			Count:     s.eval.CompletedCount(habit, d),
		})
	}
	return days, nil
}
