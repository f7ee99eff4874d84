package recurrence

import (
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
)

// Evaluator answers whether a habit is scheduled or completed on a day.
// Answers are memoized in the injected Cache; callers that mutate habits,
// patterns or completions must fire the matching Invalidator hook.
type Evaluator struct {
	cal   Calendar
	cache Cache
}

// NewEvaluator creates an evaluator. A nil cache disables memoization.
func NewEvaluator(cal Calendar, cache Cache) *Evaluator {
	if cache == nil {
		cache = nopCache{}
	}
	return &Evaluator{cal: cal, cache: cache}
}

// Calendar returns the calendar used for date normalization.
func (e *Evaluator) Calendar() Calendar {
	return e.cal
}

// Invalidator exposes the cache hooks.
func (e *Evaluator) Invalidator() Invalidator {
	return e.cache
}

// IsScheduled reports whether the habit is due on date. With follow-up
// enabled on the governing pattern, a missed scheduled day keeps the habit
// due until it is completed.
func (e *Evaluator) IsScheduled(habit models.Habit, date time.Time) bool {
	day := e.cal.Normalize(date)
	key := Key{HabitID: habit.ID, Day: e.cal.DayKey(day), Query: QueryScheduled}
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	v := e.isScheduled(habit, day)
	e.cache.Put(key, v)
	return v
}

func (e *Evaluator) isScheduled(habit models.Habit, day time.Time) bool {
	if day.Before(e.cal.Normalize(habit.StartDate)) {
		return false
	}

	pattern, ok := e.governing(habit, day)
	if !ok {
		return false
	}
	if e.matches(pattern, day) {
		return true
	}
	if !pattern.FollowUp {
		return false
	}

	_, due := e.backlog(habit, pattern, day, e.completionIndex(habit))
	return due
}

// IsCompleted reports whether the day's goal is met: enough completed
// records on the day to reach the governing pattern's repeats per day.
func (e *Evaluator) IsCompleted(habit models.Habit, date time.Time) bool {
	day := e.cal.Normalize(date)
	key := Key{HabitID: habit.ID, Day: e.cal.DayKey(day), Query: QueryCompleted}
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	threshold := 1
	if pattern, ok := e.governing(habit, day); ok && pattern.RepeatsPerDay > 1 {
		threshold = pattern.RepeatsPerDay
	}

	v := e.completionIndex(habit)[e.cal.DayKey(day)] >= threshold
	e.cache.Put(key, v)
	return v
}

// CompletedCount returns the number of completed records on the day.
func (e *Evaluator) CompletedCount(habit models.Habit, date time.Time) int {
	return e.completionIndex(habit)[e.cal.DayKey(date)]
}

// Backlog returns the earliest scheduled day before date that has not been
// resolved by a completion. It only reports a backlog when the governing
// pattern has follow-up enabled.
func (e *Evaluator) Backlog(habit models.Habit, date time.Time) (time.Time, bool) {
	day := e.cal.Normalize(date)
	if day.Before(e.cal.Normalize(habit.StartDate)) {
		return time.Time{}, false
	}
	pattern, ok := e.governing(habit, day)
	if !ok || !pattern.FollowUp {
		return time.Time{}, false
	}
	return e.backlog(habit, pattern, day, e.completionIndex(habit))
}

// GoverningPattern returns the pattern in effect on date.
func (e *Evaluator) GoverningPattern(habit models.Habit, date time.Time) (models.RepeatPattern, bool) {
	return e.governing(habit, e.cal.Normalize(date))
}

// governing picks the pattern with the latest EffectiveFrom on or before
// day, ties broken by the latest CreationDate.
func (e *Evaluator) governing(habit models.Habit, day time.Time) (models.RepeatPattern, bool) {
	var best models.RepeatPattern
	found := false
	for _, p := range habit.Patterns {
		eff := e.cal.Normalize(p.EffectiveFrom)
		if eff.After(day) {
			continue
		}
		if !found {
			best, found = p, true
			continue
		}
		bestEff := e.cal.Normalize(best.EffectiveFrom)
		if eff.After(bestEff) || (eff.Equal(bestEff) && p.CreationDate.After(best.CreationDate)) {
			best = p
		}
	}
	return best, found
}

// matches applies the pattern's goal to a single normalized day, ignoring
// follow-up carry-forward.
func (e *Evaluator) matches(p models.RepeatPattern, day time.Time) bool {
	eff := e.cal.Normalize(p.EffectiveFrom)

	switch g := p.Goal.(type) {
	case models.DailyGoal:
		switch g.Pattern {
		case models.DailyEveryXDays:
			return floorMod(e.cal.DaysBetween(eff, day), max(g.Interval, 1)) == 0
		case models.DailySpecificDays:
			week := floorDiv(e.cal.DaysBetween(e.cal.StartOfWeek(eff), day), 7)
			week = floorMod(week, g.Days.Weeks())
			return g.Days.At(week*7 + int(day.Weekday()))
		default:
			return true
		}
	case models.WeeklyGoal:
		if !g.Weekdays.Has(day.Weekday()) {
			return false
		}
		if g.Pattern == models.WeeklyWeekInterval && g.Interval > 1 {
			return floorMod(e.cal.WeeksBetween(eff, day), g.Interval) == 0
		}
		return true
	case models.MonthlyGoal:
		if !g.Days.Has(day.Day()) {
			return false
		}
		if g.Pattern == models.MonthlyMonthInterval && g.Interval > 1 {
			return floorMod(e.cal.MonthsBetween(eff, day), g.Interval) == 0
		}
		return true
	default:
		return false
	}
}

// backlog finds the earliest scheduled day in the pattern's range that
// falls after the last resolved day and before day.
func (e *Evaluator) backlog(habit models.Habit, p models.RepeatPattern, day time.Time, index map[string]int) (time.Time, bool) {
	lower := e.cal.Normalize(p.EffectiveFrom)
	if start := e.cal.Normalize(habit.StartDate); start.After(lower) {
		lower = start
	}

	threshold := max(p.RepeatsPerDay, 1)
	for _, c := range habit.Completions {
		d := e.cal.Normalize(c.Date)
		if d.Before(lower) || !d.Before(day) {
			continue
		}
		if index[e.cal.DayKey(d)] >= threshold {
			lower = d.AddDate(0, 0, 1)
		}
	}

	for d := lower; d.Before(day); d = d.AddDate(0, 0, 1) {
		if e.matches(p, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// completionIndex counts completed records per normalized day.
func (e *Evaluator) completionIndex(habit models.Habit) map[string]int {
	index := make(map[string]int, len(habit.Completions))
	for _, c := range habit.Completions {
		if c.Completed {
			index[e.cal.DayKey(c.Date)]++
		}
	}
	return index
}
