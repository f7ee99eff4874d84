package models

import (
	"errors"
	"fmt"
)

// GoalKind identifies which goal variant a repeat pattern carries.
type GoalKind string

const (
	GoalDaily   GoalKind = "daily"
	GoalWeekly  GoalKind = "weekly"
	GoalMonthly GoalKind = "monthly"
)

type DailyPattern string

const (
	DailyEveryDay     DailyPattern = "everyDay"
	DailyEveryXDays   DailyPattern = "everyXDays"
	DailySpecificDays DailyPattern = "specificDays"
)

type WeeklyPattern string

const (
	WeeklyEveryWeek    WeeklyPattern = "everyWeek"
	WeeklyWeekInterval WeeklyPattern = "weekInterval"
)

type MonthlyPattern string

const (
	MonthlyEveryMonth    MonthlyPattern = "everyMonth"
	MonthlyMonthInterval MonthlyPattern = "monthInterval"
)

var ErrInvalidGoal = errors.New("invalid goal")

// Goal is the recurrence rule owned by a repeat pattern. Exactly one of
// DailyGoal, WeeklyGoal or MonthlyGoal implements it.
type Goal interface {
	Kind() GoalKind
	Validate() error
	isGoal()
}

// DailyGoal schedules every day, every N days, or on specific days of a
// rotating multi-week cycle.
type DailyGoal struct {
	Pattern  DailyPattern
	Interval int
	Days     RotationMask
}

func (DailyGoal) Kind() GoalKind { return GoalDaily }
func (DailyGoal) isGoal()        {}

func (g DailyGoal) Validate() error {
	switch g.Pattern {
	case DailyEveryDay:
		return nil
	case DailyEveryXDays:
		if g.Interval < 1 {
			return fmt.Errorf("%w: daily interval must be at least 1, got %d", ErrInvalidGoal, g.Interval)
		}
		return nil
	case DailySpecificDays:
		return nil
	default:
		return fmt.Errorf("%w: unknown daily pattern %q", ErrInvalidGoal, g.Pattern)
	}
}

// WeeklyGoal schedules the masked weekdays every week or every N weeks.
type WeeklyGoal struct {
	Pattern  WeeklyPattern
	Interval int
	Weekdays WeekdayMask
}

func (WeeklyGoal) Kind() GoalKind { return GoalWeekly }
func (WeeklyGoal) isGoal()        {}

func (g WeeklyGoal) Validate() error {
	switch g.Pattern {
	case WeeklyEveryWeek:
		return nil
	case WeeklyWeekInterval:
		if g.Interval < 1 {
			return fmt.Errorf("%w: week interval must be at least 1, got %d", ErrInvalidGoal, g.Interval)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown weekly pattern %q", ErrInvalidGoal, g.Pattern)
	}
}

// MonthlyGoal schedules the masked days of the month every month or every N months.
type MonthlyGoal struct {
	Pattern  MonthlyPattern
	Interval int
	Days     MonthDayMask
}

func (MonthlyGoal) Kind() GoalKind { return GoalMonthly }
func (MonthlyGoal) isGoal()        {}

func (g MonthlyGoal) Validate() error {
	switch g.Pattern {
	case MonthlyEveryMonth:
		return nil
	case MonthlyMonthInterval:
		if g.Interval < 1 {
			return fmt.Errorf("%w: month interval must be at least 1, got %d", ErrInvalidGoal, g.Interval)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown monthly pattern %q", ErrInvalidGoal, g.Pattern)
	}
}

// EveryDay is shorthand for the plain daily goal.
func EveryDay() DailyGoal {
	return DailyGoal{Pattern: DailyEveryDay}
}

// EveryXDays is shorthand for an interval daily goal.
func EveryXDays(n int) DailyGoal {
	return DailyGoal{Pattern: DailyEveryXDays, Interval: n}
}
