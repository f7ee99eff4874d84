package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarNormalize(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	cal := NewCalendar(loc, time.Sunday)

	// 20:00 UTC on Jan 1 is already Jan 2 in UTC+9.
	got := cal.Normalize(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), got)
	assert.Equal(t, "2024-01-02", cal.DayKey(got))
}

func TestCalendarDaysBetween(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Sunday)

	assert.Equal(t, 0, cal.DaysBetween(date(2024, 1, 1), date(2024, 1, 1).Add(23*time.Hour)))
	assert.Equal(t, 3, cal.DaysBetween(date(2024, 1, 1), date(2024, 1, 4)))
	assert.Equal(t, -3, cal.DaysBetween(date(2024, 1, 4), date(2024, 1, 1)))
	assert.Equal(t, 366, cal.DaysBetween(date(2024, 1, 1), date(2025, 1, 1)))
}

func TestCalendarDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	cal := NewCalendar(loc, time.Sunday)

	a := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	b := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, cal.DaysBetween(a, b))
}

func TestCalendarWeeks(t *testing.T) {
	sunday := NewCalendar(time.UTC, time.Sunday)
	monday := NewCalendar(time.UTC, time.Monday)

	// 2024-01-07 is a Sunday.
	assert.Equal(t, date(2024, 1, 7), sunday.StartOfWeek(date(2024, 1, 10)))
	assert.Equal(t, date(2024, 1, 8), monday.StartOfWeek(date(2024, 1, 10)))
	assert.Equal(t, date(2024, 1, 1), monday.StartOfWeek(date(2024, 1, 7)))

	assert.Equal(t, 1, sunday.WeeksBetween(date(2024, 1, 6), date(2024, 1, 7)))
	assert.Equal(t, 0, monday.WeeksBetween(date(2024, 1, 6), date(2024, 1, 7)))
	assert.Equal(t, -1, sunday.WeeksBetween(date(2024, 1, 7), date(2024, 1, 6)))
}

func TestCalendarMonthsBetween(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Sunday)

	assert.Equal(t, 0, cal.MonthsBetween(date(2024, 1, 1), date(2024, 1, 31)))
	assert.Equal(t, 1, cal.MonthsBetween(date(2024, 1, 31), date(2024, 2, 1)))
	assert.Equal(t, 13, cal.MonthsBetween(date(2023, 12, 15), date(2025, 1, 1)))
}

func TestFloorHelpers(t *testing.T) {
	assert.Equal(t, 2, floorMod(-1, 3))
	assert.Equal(t, 0, floorMod(6, 3))
	assert.Equal(t, -1, floorDiv(-1, 7))
	assert.Equal(t, 1, floorDiv(7, 7))
	assert.Equal(t, 0, floorDiv(6, 7))
}
