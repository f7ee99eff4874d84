package interchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

// Export writes every list, habit, pattern and completion to w. Each list
// is followed by its habits, each habit by its patterns and completions;
// standalone habits come after the last list.
func (c *Codec) Export(ctx context.Context, w io.Writer) (Counts, error) {
	release, err := c.acquire()
	if err != nil {
		return Counts{}, err
	}
	defer release()

	var counts Counts
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return counts, fmt.Errorf("failed to write header: %w", err)
	}

	err = c.store.InTx(ctx, func(tx storage.Repository) error {
		lists, err := tx.Lists(ctx)
		if err != nil {
			return err
		}
		for _, list := range lists {
			if err := cw.Write(listRow(list)); err != nil {
				return err
			}
			counts.Lists++

			habits, err := tx.Habits(ctx, storage.HabitFilter{
				ListID:          uuid.NullUUID{UUID: list.ID, Valid: true},
				IncludeArchived: true,
				WithPatterns:    true,
				WithCompletions: true,
			})
			if err != nil {
				return err
			}
			if err := writeHabits(cw, habits, &list, &counts); err != nil {
				return err
			}
		}

		standalone, err := tx.Habits(ctx, storage.HabitFilter{
			Standalone:      true,
			IncludeArchived: true,
			WithPatterns:    true,
			WithCompletions: true,
		})
		if err != nil {
			return err
		}
		return writeHabits(cw, standalone, nil, &counts)
	})
	if err != nil {
		return counts, &PersistenceError{Pass: "export", Err: err}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return counts, fmt.Errorf("failed to write export: %w", err)
	}
	logger.Info("Export finished", "lists", counts.Lists, "habits", counts.Habits,
		"patterns", counts.Patterns, "completions", counts.Completions)
	return counts, nil
}

func writeHabits(cw *csv.Writer, habits []models.Habit, list *models.HabitList, counts *Counts) error {
	for _, h := range habits {
		if err := cw.Write(habitRow(h, list)); err != nil {
			return err
		}
		counts.Habits++
		for _, p := range h.Patterns {
			if err := cw.Write(patternRow(p)); err != nil {
				return err
			}
			counts.Patterns++
		}
		for _, comp := range h.Completions {
			if err := cw.Write(completionRow(comp)); err != nil {
				return err
			}
			counts.Completions++
		}
	}
	return nil
}

func listRow(l models.HabitList) row {
	r := newRow(TypeList)
	r[colID] = l.ID.String()
	r[colName] = l.Name
	r[colColor] = formatColor(l.Color)
	r[colIcon] = EncodeIcon(l.Icon)
	r[colOrder] = strconv.Itoa(l.Order)
	return r
}

func habitRow(h models.Habit, list *models.HabitList) row {
	r := newRow(TypeHabit)
	r[colID] = h.ID.String()
	r[colName] = h.Name
	r[colDescription] = h.Description
	r[colColor] = formatColor(h.Color)
	r[colIcon] = EncodeIcon(h.Icon)
	r[colIsBadHabit] = formatBool(h.IsBadHabit)
	r[colIsArchived] = formatBool(h.IsArchived)
	r[colOrder] = strconv.Itoa(h.Order)
	r[colStartDate] = formatTime(h.StartDate)
	r[colLastCompletionDate] = formatOptionalTime(h.LastCompletionDate)
	if list != nil {
		r[colHabitListID] = list.ID.String()
		r[colHabitListName] = list.Name
	}
	return r
}

func patternRow(p models.RepeatPattern) row {
	r := newRow(TypePattern)
	r[colID] = p.ID.String()
	r[colRepeatPatternHabitID] = p.HabitID.String()
	r[colFollowUp] = formatBool(p.FollowUp)
	r[colEffectiveFrom] = formatTime(p.EffectiveFrom)
	r[colCreationDate] = formatTime(p.CreationDate)
	r[colRepeatsPerDay] = strconv.Itoa(p.RepeatsPerDay)

	switch g := p.Goal.(type) {
	case models.DailyGoal:
		r[colGoalType] = string(models.GoalDaily)
		r[colDailyGoalPattern] = string(g.Pattern)
		r[colDaysInterval] = formatInterval(g.Interval)
		if g.Pattern == models.DailySpecificDays {
			r[colSpecificDaysDaily] = formatMask(g.Days.Bools())
		}
	case models.WeeklyGoal:
		r[colGoalType] = string(models.GoalWeekly)
		r[colWeeklyGoalPattern] = string(g.Pattern)
		r[colWeekInterval] = formatInterval(g.Interval)
		r[colSpecificDaysWeekly] = formatMask(g.Weekdays.Bools())
	case models.MonthlyGoal:
		r[colGoalType] = string(models.GoalMonthly)
		r[colMonthlyGoalPattern] = string(g.Pattern)
		r[colMonthInterval] = formatInterval(g.Interval)
		r[colSpecificDaysMonthly] = formatMask(g.Days.Bools())
	}
	return r
}

func formatInterval(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// completionRow carries the owning habit in RepeatPatternHabitID and the
// logging time in CreationDate.
func completionRow(comp models.Completion) row {
	r := newRow(TypeCompletion)
	r[colID] = comp.ID.String()
	r[colRepeatPatternHabitID] = comp.HabitID.String()
	r[colCreationDate] = formatTime(comp.LoggedAt)
	r[colCompletionDate] = formatTime(comp.Date)
	r[colCompletionDuration] = strconv.Itoa(comp.Duration)
	r[colCompletionStatus] = formatBool(comp.Completed)
	return r
}
