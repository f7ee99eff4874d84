package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

// WeekdayMask marks which weekdays count, indexed by time.Weekday (Sunday = 0).
type WeekdayMask [7]bool

// MonthDayMask marks which days of the month count, indexed by day-1.
type MonthDayMask [31]bool

// RotationMask is a multi-week weekday mask. Each week occupies seven
// consecutive slots indexed by time.Weekday.
type RotationMask struct {
	weeks int
	days  [constants.MaxRotationWeeks * 7]bool
}

// NewRotationMask builds a rotation mask from a flat list of day flags. The
// input is padded with false to a whole number of weeks and truncated to the
// maximum rotation length. An empty input yields the zero mask, which
// behaves as a single empty week.
func NewRotationMask(days []bool) RotationMask {
	if len(days) == 0 {
		return RotationMask{}
	}
	weeks := (len(days) + 6) / 7
	if weeks > constants.MaxRotationWeeks {
		weeks = constants.MaxRotationWeeks
	}

	m := RotationMask{weeks: weeks}
	for i := 0; i < len(days) && i < weeks*7; i++ {
		m.days[i] = days[i]
	}
	return m
}

// Weeks returns the rotation length in weeks.
func (m RotationMask) Weeks() int {
	if m.weeks < 1 {
		return 1
	}
	return m.weeks
}

// Len returns the number of day slots in the rotation.
func (m RotationMask) Len() int {
	return m.Weeks() * 7
}

// At reports whether the given slot is set. Out-of-range slots are unset.
func (m RotationMask) At(i int) bool {
	if i < 0 || i >= m.Len() {
		return false
	}
	return m.days[i]
}

// Bools returns a copy of the mask as a flat slice.
func (m RotationMask) Bools() []bool {
	out := make([]bool, m.Len())
	copy(out, m.days[:m.Len()])
	return out
}

// Slots returns the explicitly sized slots, empty for the zero mask.
func (m RotationMask) Slots() []bool {
	return append([]bool(nil), m.days[:m.weeks*7]...)
}

// Any reports whether at least one slot is set.
func (m RotationMask) Any() bool {
	return anySet(m.days[:m.Len()])
}

// NewWeekdayMask builds a mask with the given weekdays set.
func NewWeekdayMask(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			m[d] = true
		}
	}
	return m
}

// WeekdayMaskFromBools pads or truncates the flags to seven entries.
func WeekdayMaskFromBools(days []bool) WeekdayMask {
	var m WeekdayMask
	copy(m[:], days)
	return m
}

// Has reports whether the weekday is set.
func (m WeekdayMask) Has(d time.Weekday) bool {
	return m[d]
}

// Any reports whether at least one weekday is set.
func (m WeekdayMask) Any() bool {
	return anySet(m[:])
}

// Bools returns the mask as a slice.
func (m WeekdayMask) Bools() []bool {
	return append([]bool(nil), m[:]...)
}

// NewMonthDayMask builds a mask with the given days of the month (1-31) set.
func NewMonthDayMask(days ...int) MonthDayMask {
	var m MonthDayMask
	for _, d := range days {
		if d >= 1 && d <= 31 {
			m[d-1] = true
		}
	}
	return m
}

// MonthDayMaskFromBools pads or truncates the flags to 31 entries.
func MonthDayMaskFromBools(days []bool) MonthDayMask {
	var m MonthDayMask
	copy(m[:], days)
	return m
}

// Has reports whether the day of month (1-31) is set.
func (m MonthDayMask) Has(day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	return m[day-1]
}

// Any reports whether at least one day is set.
func (m MonthDayMask) Any() bool {
	return anySet(m[:])
}

// Bools returns the mask as a slice.
func (m MonthDayMask) Bools() []bool {
	return append([]bool(nil), m[:]...)
}

func anySet(bits []bool) bool {
	for _, b := range bits {
		if b {
			return true
		}
	}
	return false
}

// EncodeBits renders flags as a compact string of '0' and '1' for storage.
func EncodeBits(bits []bool) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// DecodeBits parses a string produced by EncodeBits.
func DecodeBits(s string) ([]bool, error) {
	bits := make([]bool, len(s))
	for i, c := range s {
		switch c {
		case '1':
			bits[i] = true
		case '0':
		default:
			return nil, fmt.Errorf("invalid mask character %q at position %d", c, i)
		}
	}
	return bits, nil
}
