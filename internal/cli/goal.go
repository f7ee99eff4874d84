package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
)

// GoalFlags describes a repeat pattern on the command line.
type GoalFlags struct {
	Repeat    string `help:"Goal kind: daily, weekly or monthly." enum:"daily,weekly,monthly" default:"daily"`
	Every     int    `help:"Interval in days, weeks or months." default:"1"`
	Days      string `help:"Weekdays for a weekly goal (mon,wed,fri)."`
	MonthDays string `help:"Days of the month for a monthly goal (1,15,31)."`
	Rotation  string `help:"Daily rotation of up to 4 weeks, weeks separated by '/' (mon,wed/fri)."`
	FollowUp  bool   `help:"Carry a missed day forward until it is completed."`
	Repeats   int    `help:"Completions needed per scheduled day." default:"1"`
}

// Goal builds the goal the flags describe.
func (f GoalFlags) Goal() (models.Goal, error) {
	if f.Every < 1 {
		return nil, fmt.Errorf("--every must be at least 1, got %d", f.Every)
	}

	switch models.GoalKind(f.Repeat) {
	case models.GoalDaily, "":
		if f.Rotation != "" {
			days, err := ParseRotation(f.Rotation)
			if err != nil {
				return nil, err
			}
			return models.DailyGoal{Pattern: models.DailySpecificDays, Days: days}, nil
		}
		if f.Every > 1 {
			return models.EveryXDays(f.Every), nil
		}
		return models.EveryDay(), nil

	case models.GoalWeekly:
		weekdays, err := utils.ParseWeekdays(f.Days)
		if err != nil {
			return nil, err
		}
		if len(weekdays) == 0 {
			return nil, fmt.Errorf("a weekly goal needs --days")
		}
		g := models.WeeklyGoal{Pattern: models.WeeklyEveryWeek, Weekdays: models.NewWeekdayMask(weekdays...)}
		if f.Every > 1 {
			g.Pattern, g.Interval = models.WeeklyWeekInterval, f.Every
		}
		return g, nil

	case models.GoalMonthly:
		days, err := ParseMonthDays(f.MonthDays)
		if err != nil {
			return nil, err
		}
		g := models.MonthlyGoal{Pattern: models.MonthlyEveryMonth, Days: models.NewMonthDayMask(days...)}
		if f.Every > 1 {
			g.Pattern, g.Interval = models.MonthlyMonthInterval, f.Every
		}
		return g, nil

	default:
		return nil, fmt.Errorf("unknown goal kind %q", f.Repeat)
	}
}

// ParseRotation parses week groups separated by '/', each a comma list of
// weekdays, into a rotation mask.
func ParseRotation(s string) (models.RotationMask, error) {
	weeks := strings.Split(s, "/")
	if len(weeks) > constants.MaxRotationWeeks {
		return models.RotationMask{}, fmt.Errorf("rotation can span at most %d weeks, got %d", constants.MaxRotationWeeks, len(weeks))
	}
	slots := make([]bool, len(weeks)*7)
	for i, week := range weeks {
		weekdays, err := utils.ParseWeekdays(week)
		if err != nil {
			return models.RotationMask{}, err
		}
		for _, wd := range weekdays {
			slots[i*7+int(wd)] = true
		}
	}
	return models.NewRotationMask(slots), nil
}

// ParseMonthDays parses a comma list of days of the month.
func ParseMonthDays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 1 || d > 31 {
			return nil, fmt.Errorf("invalid day of month: %s", part)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("a monthly goal needs --month-days")
	}
	return days, nil
}

// FormatGoal renders a goal as a short human-readable string.
func FormatGoal(goal models.Goal) string {
	switch g := goal.(type) {
	case models.DailyGoal:
		switch g.Pattern {
		case models.DailyEveryXDays:
			return fmt.Sprintf("every %d days", g.Interval)
		case models.DailySpecificDays:
			weeks := make([]string, 0, g.Days.Weeks())
			for w := 0; w < g.Days.Weeks(); w++ {
				var names []string
				for d := 0; d < 7; d++ {
					if g.Days.At(w*7 + d) {
						names = append(names, time.Weekday(d).String()[:3])
					}
				}
				weeks = append(weeks, strings.Join(names, ","))
			}
			return "rotation " + strings.Join(weeks, " / ")
		default:
			return "daily"
		}
	case models.WeeklyGoal:
		s := "weekly on " + formatWeekdays(g.Weekdays)
		if g.Pattern == models.WeeklyWeekInterval {
			s = fmt.Sprintf("every %d weeks on %s", g.Interval, formatWeekdays(g.Weekdays))
		}
		return s
	case models.MonthlyGoal:
		var days []string
		for d := 1; d <= 31; d++ {
			if g.Days.Has(d) {
				days = append(days, strconv.Itoa(d))
			}
		}
		if g.Pattern == models.MonthlyMonthInterval {
			return fmt.Sprintf("every %d months on day %s", g.Interval, strings.Join(days, ","))
		}
		return "monthly on day " + strings.Join(days, ",")
	default:
		return "unknown"
	}
}

func formatWeekdays(m models.WeekdayMask) string {
	var days []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if m.Has(d) {
			days = append(days, d.String()[:3])
		}
	}
	if len(days) == 0 {
		return "no days"
	}
	return strings.Join(days, ",")
}
