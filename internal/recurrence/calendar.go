package recurrence

import (
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

// Calendar carries the time zone and week start used to normalize dates.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar returns a calendar for loc. A nil location means time.Local.
func NewCalendar(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Location: loc, WeekStart: weekStart}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Normalize returns local midnight of the day containing t.
func (c Calendar) Normalize(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// DayKey formats the normalized day as YYYY-MM-DD.
func (c Calendar) DayKey(t time.Time) string {
	return c.Normalize(t).Format(constants.DateFormat)
}

// DaysBetween counts calendar days from a to b. DST transitions do not
// affect the result.
func (c Calendar) DaysBetween(a, b time.Time) int {
	a, b = a.In(c.loc()), b.In(c.loc())
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// StartOfWeek returns the normalized first day of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.Normalize(t)
	offset := floorMod(int(day.Weekday())-int(c.WeekStart), 7)
	return day.AddDate(0, 0, -offset)
}

// WeeksBetween counts week boundaries crossed from a to b.
func (c Calendar) WeeksBetween(a, b time.Time) int {
	return floorDiv(c.DaysBetween(c.StartOfWeek(a), c.StartOfWeek(b)), 7)
}

// MonthsBetween counts month boundaries crossed from a to b.
func (c Calendar) MonthsBetween(a, b time.Time) int {
	a, b = a.In(c.loc()), b.In(c.loc())
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func floorDiv(a, n int) int {
	q := a / n
	if (a%n != 0) && ((a < 0) != (n < 0)) {
		q--
	}
	return q
}
