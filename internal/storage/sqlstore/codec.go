package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
)

// timeLayout is fixed width so stored TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dbTime stores instants as UTC text. It scans back from TEXT (SQLite) and
// TIMESTAMPTZ (PostgreSQL) columns.
type dbTime struct {
	time.Time
}

func (t dbTime) Value() (driver.Value, error) {
	return t.UTC().Format(timeLayout), nil
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid stored time %q", s)
}

// nullTime is the optional counterpart of dbTime.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func newNullTime(t *time.Time) nullTime {
	if t == nil || t.IsZero() {
		return nullTime{}
	}
	return nullTime{Time: *t, Valid: true}
}

func (n nullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return dbTime{n.Time}.Value()
}

func (n *nullTime) Scan(src any) error {
	if src == nil {
		n.Time, n.Valid = time.Time{}, false
		return nil
	}
	var t dbTime
	if err := t.Scan(src); err != nil {
		return err
	}
	n.Time, n.Valid = t.Time, true
	return nil
}

func (n nullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// goalColumns is the flattened storage form of a models.Goal.
type goalColumns struct {
	Type     string
	Pattern  string
	Interval int
	Mask     string
}

func encodeGoal(g models.Goal) (goalColumns, error) {
	switch v := g.(type) {
	case models.DailyGoal:
		return goalColumns{
			Type:     string(models.GoalDaily),
			Pattern:  string(v.Pattern),
			Interval: v.Interval,
			Mask:     models.EncodeBits(v.Days.Slots()),
		}, nil
	case models.WeeklyGoal:
		return goalColumns{
			Type:     string(models.GoalWeekly),
			Pattern:  string(v.Pattern),
			Interval: v.Interval,
			Mask:     models.EncodeBits(v.Weekdays.Bools()),
		}, nil
	case models.MonthlyGoal:
		return goalColumns{
			Type:     string(models.GoalMonthly),
			Pattern:  string(v.Pattern),
			Interval: v.Interval,
			Mask:     models.EncodeBits(v.Days.Bools()),
		}, nil
	default:
		return goalColumns{}, fmt.Errorf("%w: unsupported goal %T", models.ErrInvalidGoal, g)
	}
}

func decodeGoal(c goalColumns) (models.Goal, error) {
	bits, err := models.DecodeBits(c.Mask)
	if err != nil {
		return nil, err
	}

	switch models.GoalKind(c.Type) {
	case models.GoalDaily:
		return models.DailyGoal{
			Pattern:  models.DailyPattern(c.Pattern),
			Interval: c.Interval,
			Days:     models.NewRotationMask(bits),
		}, nil
	case models.GoalWeekly:
		return models.WeeklyGoal{
			Pattern:  models.WeeklyPattern(c.Pattern),
			Interval: c.Interval,
			Weekdays: models.WeekdayMaskFromBools(bits),
		}, nil
	case models.GoalMonthly:
		return models.MonthlyGoal{
			Pattern:  models.MonthlyPattern(c.Pattern),
			Interval: c.Interval,
			Days:     models.MonthDayMaskFromBools(bits),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown goal type %q", models.ErrInvalidGoal, c.Type)
	}
}
