package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
	"github.com/eliasosarumwense/Habital-sub003/internal/stats"
)

// Mark returns the glyph for a habit on a day. A bad habit succeeds when
// nothing was logged.
func Mark(bad, scheduled, completed bool, count int, open bool) string {
	switch {
	case !scheduled && count == 0:
		return mutedStyle.Render("·")
	case open:
		if count > 0 {
			return openStyle.Render("◐")
		}
		return openStyle.Render("○")
	case completed != bad:
		return successStyle.Render("●")
	default:
		return failureStyle.Render("●")
	}
}

// RenderToday lists the day's habits with their progress. Unresolved
// habits on today or later are shown as open.
func RenderToday(cal recurrence.Calendar, date, today time.Time, items []habits.DayItem) string {
	pending := !cal.Normalize(date).Before(cal.Normalize(today))
	var b strings.Builder
	b.WriteString(titleStyle.Render(date.Format("Monday, "+constants.DateFormat)))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("Nothing scheduled."))
		b.WriteString("\n")
		return b.String()
	}

	for _, it := range items {
		open := pending && !it.Completed
		fmt.Fprintf(&b, "  %s %s", Mark(it.Habit.IsBadHabit, it.Scheduled, it.Completed, it.Count, open), it.Habit.Name)
		if it.Required > 1 {
			fmt.Fprintf(&b, " %s", mutedStyle.Render(fmt.Sprintf("%d/%d", it.Count, it.Required)))
		}
		if it.Habit.IsBadHabit {
			b.WriteString(" " + mutedStyle.Render("(avoid)"))
		}
		if it.Backlog != nil {
			b.WriteString(" " + warningStyle.Render("carried over from "+cal.DayKey(*it.Backlog)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCalendar draws the days as a week grid starting on the calendar's
// first weekday. Days after today are shown as open.
func RenderCalendar(cal recurrence.Calendar, habit models.Habit, days []habits.CalendarDay, today time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(habit.Name))
	b.WriteString("\n")
	if len(days) == 0 {
		return b.String()
	}
	today = cal.Normalize(today)

	b.WriteString(strings.Repeat(" ", 11))
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(cal.WeekStart) + i) % 7)
		b.WriteString(" " + wd.String()[:2])
	}
	b.WriteString("\n")

	byKey := make(map[string]habits.CalendarDay, len(days))
	for _, d := range days {
		byKey[cal.DayKey(d.Date)] = d
	}

	first, last := days[0].Date, days[len(days)-1].Date
	for week := cal.StartOfWeek(first); !week.After(last); week = week.AddDate(0, 0, 7) {
		b.WriteString(mutedStyle.Render(cal.DayKey(week)) + " ")
		for i := 0; i < 7; i++ {
			day := week.AddDate(0, 0, i)
			d, ok := byKey[cal.DayKey(day)]
			if !ok {
				b.WriteString("   ")
				continue
			}
			open := day.After(today) || (day.Equal(today) && !d.Completed)
			b.WriteString("  " + Mark(habit.IsBadHabit, d.Scheduled, d.Completed, d.Count, open))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStats formats a summary as a table followed by the totals.
func RenderStats(s stats.Summary) string {
	rows := make([][]string, 0, len(s.Habits))
	for _, h := range s.Habits {
		name := h.Name
		if h.IsBadHabit {
			name += " (bad)"
		}
		rows = append(rows, []string{
			name,
			humanize.Comma(int64(h.Scheduled)),
			humanize.Comma(int64(h.Successes)),
			stats.Percent(h.Rate),
			fmt.Sprint(h.CurrentStreak),
			fmt.Sprint(h.LongestStreak),
			fmt.Sprintf("%+d", h.XP),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Habit", "Scheduled", "Success", "Rate", "Streak", "Best", "XP").
		Rows(rows...)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s to %s", s.From, s.To)))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Overall: %s of %s scheduled days (%s)\n",
		humanize.Comma(int64(s.Successes)), humanize.Comma(int64(s.Scheduled)), stats.Percent(s.Rate))
	fmt.Fprintf(&b, "Good completions: %s  Bad relapses: %s\n",
		successStyle.Render(humanize.Comma(int64(s.Split.GoodCompletions))),
		failureStyle.Render(humanize.Comma(int64(s.Split.BadRelapses))))
	fmt.Fprintf(&b, "XP: %+d\n", s.XP)
	return b.String()
}
