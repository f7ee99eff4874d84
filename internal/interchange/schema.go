package interchange

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

// Column positions in the interchange file. Position, not header text,
// identifies a field.
const (
	colType = iota
	colID
	colName
	colDescription
	colColor
	colIcon
	colIsBadHabit
	colIsArchived
	colOrder
	colStartDate
	colLastCompletionDate
	colRepeatPatternHabitID
	colFollowUp
	colEffectiveFrom
	colCreationDate
	colRepeatsPerDay
	colGoalType
	colDailyGoalPattern
	colDaysInterval
	colSpecificDaysDaily
	colWeeklyGoalPattern
	colWeekInterval
	colSpecificDaysWeekly
	colMonthlyGoalPattern
	colMonthInterval
	colSpecificDaysMonthly
	colHabitListID
	colHabitListName
	colCompletionDate
	colCompletionDuration
	colCompletionStatus

	columnCount
)

// minHabitColumns is the shortest habit row the importer accepts.
const minHabitColumns = 25

// Header is the first row of every export.
var Header = []string{
	"Type", "ID", "Name", "Description", "Color", "Icon", "IsBadHabit", "IsArchived", "Order",
	"StartDate", "LastCompletionDate", "RepeatPatternHabitID", "FollowUp", "EffectiveFrom",
	"CreationDate", "RepeatsPerDay", "GoalType", "DailyGoalPattern", "DaysInterval",
	"SpecificDaysDaily", "WeeklyGoalPattern", "WeekInterval", "SpecificDaysWeekly",
	"MonthlyGoalPattern", "MonthInterval", "SpecificDaysMonthly", "HabitListID", "HabitListName",
	"CompletionDate", "CompletionDuration", "CompletionStatus",
}

// Row types.
const (
	TypeList       = "HabitList"
	TypeHabit      = "Habit"
	TypePattern    = "RepeatPattern"
	TypeCompletion = "Completion"
)

// Filename returns the export file name for t.
func Filename(t time.Time) string {
	return constants.ExportFilePrefix + t.Format(constants.ExportFileTimeFormat) + constants.ExportFileSuffix
}

type row []string

func newRow(typ string) row {
	r := make(row, columnCount)
	r[colType] = typ
	return r
}

// get returns the trimmed cell, or "" when the row is too short.
func (r row) get(col int) string {
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// raw returns the cell as written, or "" when the row is too short.
func (r row) raw(col int) string {
	if col >= len(r) {
		return ""
	}
	return r[col]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(constants.InterchangeTimeFormat)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// dateLayouts are tried in order when reading a date cell.
var dateLayouts = []string{
	constants.InterchangeTimeFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	constants.DateFormat,
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// firstDate scans every cell for the first parseable date.
func (r row) firstDate() (time.Time, bool) {
	for _, cell := range r {
		if t, err := parseTime(cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func formatColor(c []byte) string {
	if len(c) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(c)
}

func parseColor(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed UUID %q", s)
	}
	return id, nil
}

// formatMask writes day flags as pipe-separated booleans.
func formatMask(bits []bool) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		parts[i] = formatBool(b)
	}
	return strings.Join(parts, "|")
}

// parseMask reads pipe-separated booleans and counts unreadable tokens,
// which are left unset.
func parseMask(s string) ([]bool, int) {
	if strings.TrimSpace(s) == "" {
		return nil, 0
	}
	tokens := strings.Split(s, "|")
	bits := make([]bool, len(tokens))
	bad := 0
	for i, tok := range tokens {
		b, err := parseBool(tok)
		if err != nil {
			bad++
		}
		bits[i] = b
	}
	return bits, bad
}
