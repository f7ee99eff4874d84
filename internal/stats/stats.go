// Package stats aggregates habit outcomes over a date range.
//
// A bad habit inverts the meaning of a completion: a logged record is a
// relapse, and a scheduled day without one is a success.
package stats

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
)

var (
	hundred = decimal.NewFromInt(100)
	now     = time.Now
)

// HabitStats is the outcome of one habit over the range.
type HabitStats struct {
	HabitID       uuid.UUID       `json:"habit_id" yaml:"habit_id"`
	Name          string          `json:"name" yaml:"name"`
	IsBadHabit    bool            `json:"is_bad_habit" yaml:"is_bad_habit"`
	Scheduled     int             `json:"scheduled" yaml:"scheduled"`
	Successes     int             `json:"successes" yaml:"successes"`
	Failures      int             `json:"failures" yaml:"failures"`
	Rate          decimal.Decimal `json:"rate" yaml:"rate"`
	CurrentStreak int             `json:"current_streak" yaml:"current_streak"`
	LongestStreak int             `json:"longest_streak" yaml:"longest_streak"`
	XP            int             `json:"xp" yaml:"xp"`
}

// Split feeds the good versus bad chart.
type Split struct {
	// GoodCompletions counts completed records of good habits.
	GoodCompletions int `json:"good_completions" yaml:"good_completions"`
	// BadRelapses counts completed records of bad habits.
	BadRelapses int `json:"bad_relapses" yaml:"bad_relapses"`
}

// Summary aggregates every habit over [From, To].
type Summary struct {
	From      string          `json:"from" yaml:"from"`
	To        string          `json:"to" yaml:"to"`
	Habits    []HabitStats    `json:"habits" yaml:"habits"`
	Scheduled int             `json:"scheduled" yaml:"scheduled"`
	Successes int             `json:"successes" yaml:"successes"`
	Rate      decimal.Decimal `json:"rate" yaml:"rate"`
	Split     Split           `json:"split" yaml:"split"`
	XP        int             `json:"xp" yaml:"xp"`
}

// XPDelta is the experience change for one completed record: a reward
// scaled by intensity, or a fixed penalty for a bad habit.
func XPDelta(h models.Habit) int {
	if h.IsBadHabit {
		return -constants.XPBadHabitPenalty
	}
	return max(h.IntensityLevel, constants.MinIntensityLevel) * constants.XPPerIntensityLevel
}

// Rate returns successes/scheduled rounded to four places, zero when
// nothing was scheduled.
func Rate(successes, scheduled int) decimal.Decimal {
	if scheduled == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(scheduled))).Round(4)
}

// Percent renders a rate as a percentage with one decimal place.
func Percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(1) + "%"
}

// Compute evaluates habits day by day over [from, to]. Habits must carry
// their patterns and completions.
func Compute(eval *recurrence.Evaluator, habits []models.Habit, from, to time.Time) Summary {
	cal := eval.Calendar()
	from, to = cal.Normalize(from), cal.Normalize(to)

	sum := Summary{From: cal.DayKey(from), To: cal.DayKey(to)}
	for _, h := range habits {
		hs := ComputeHabit(eval, h, from, to)
		sum.Habits = append(sum.Habits, hs)
		sum.Scheduled += hs.Scheduled
		sum.Successes += hs.Successes
		sum.XP += hs.XP

		n := completedIn(cal, h, from, to)
		if h.IsBadHabit {
			sum.Split.BadRelapses += n
		} else {
			sum.Split.GoodCompletions += n
		}
	}
	sum.Rate = Rate(sum.Successes, sum.Scheduled)
	return sum
}

// ComputeHabit evaluates one habit. Today is left out until it is
// resolved, so an open day neither fails nor resets the streak.
func ComputeHabit(eval *recurrence.Evaluator, h models.Habit, from, to time.Time) HabitStats {
	cal := eval.Calendar()
	from, to = cal.Normalize(from), cal.Normalize(to)
	today := cal.Normalize(now())

	hs := HabitStats{HabitID: h.ID, Name: h.Name, IsBadHabit: h.IsBadHabit}
	run := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !eval.IsScheduled(h, d) {
			continue
		}

		success := eval.IsCompleted(h, d) != h.IsBadHabit
		switch {
		case d.After(today), d.Equal(today) && success == h.IsBadHabit:
			continue
		case success:
			hs.Successes++
			run++
			hs.LongestStreak = max(hs.LongestStreak, run)
		default:
			hs.Failures++
			run = 0
		}
		hs.Scheduled++
	}
	hs.CurrentStreak = run
	hs.Rate = Rate(hs.Successes, hs.Scheduled)
	hs.XP = completedIn(cal, h, from, to) * XPDelta(h)
	return hs
}

func completedIn(cal recurrence.Calendar, h models.Habit, from, to time.Time) int {
	n := 0
	for _, c := range h.Completions {
		if !c.Completed {
			continue
		}
		d := cal.Normalize(c.Date)
		if !d.Before(from) && !d.After(to) {
			n++
		}
	}
	return n
}
