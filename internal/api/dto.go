package api

import (
	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HabitDTO is a habit with its state on the requested day.
type HabitDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	IsBadHabit  bool         `json:"is_bad_habit"`
	IsArchived  bool         `json:"is_archived"`
	StartDate   string       `json:"start_date"`
	ListID      *uuid.UUID   `json:"list_id,omitempty"`
	Scheduled   bool         `json:"scheduled"`
	Completed   bool         `json:"completed"`
	Count       int          `json:"count"`
	Required    int          `json:"required"`
	Backlog     string       `json:"backlog,omitempty"`
	Patterns    []PatternDTO `json:"patterns,omitempty"`
}

// PatternDTO describes one repeat pattern.
type PatternDTO struct {
	ID            uuid.UUID `json:"id"`
	EffectiveFrom string    `json:"effective_from"`
	FollowUp      bool      `json:"follow_up"`
	RepeatsPerDay int       `json:"repeats_per_day"`
	GoalType      string    `json:"goal_type"`
	Pattern       string    `json:"pattern"`
	Interval      int       `json:"interval,omitempty"`
	Days          []bool    `json:"days,omitempty"`
}

// ToggleResponse reports the day's state after a toggle.
type ToggleResponse struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

func toHabitDTO(cal recurrence.Calendar, item habits.DayItem, withPatterns bool) HabitDTO {
	h := item.Habit
	dto := HabitDTO{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Icon:        h.Icon,
		IsBadHabit:  h.IsBadHabit,
		IsArchived:  h.IsArchived,
		StartDate:   cal.DayKey(h.StartDate),
		Scheduled:   item.Scheduled,
		Completed:   item.Completed,
		Count:       item.Count,
		Required:    item.Required,
	}
	if h.ListID.Valid {
		id := h.ListID.UUID
		dto.ListID = &id
	}
	if item.Backlog != nil {
		dto.Backlog = cal.DayKey(*item.Backlog)
	}
	if withPatterns {
		for _, p := range h.Patterns {
			dto.Patterns = append(dto.Patterns, toPatternDTO(cal, p))
		}
	}
	return dto
}

func toPatternDTO(cal recurrence.Calendar, p models.RepeatPattern) PatternDTO {
	dto := PatternDTO{
		ID:            p.ID,
		EffectiveFrom: cal.DayKey(p.EffectiveFrom),
		FollowUp:      p.FollowUp,
		RepeatsPerDay: p.RepeatsPerDay,
	}
	switch g := p.Goal.(type) {
	case models.DailyGoal:
		dto.GoalType, dto.Pattern, dto.Interval = string(models.GoalDaily), string(g.Pattern), g.Interval
		if g.Pattern == models.DailySpecificDays {
			dto.Days = g.Days.Bools()
		}
	case models.WeeklyGoal:
		dto.GoalType, dto.Pattern, dto.Interval = string(models.GoalWeekly), string(g.Pattern), g.Interval
		dto.Days = g.Weekdays.Bools()
	case models.MonthlyGoal:
		dto.GoalType, dto.Pattern, dto.Interval = string(models.GoalMonthly), string(g.Pattern), g.Interval
		dto.Days = g.Days.Bools()
	}
	return dto
}
