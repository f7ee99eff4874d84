package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRotationMask(t *testing.T) {
	tests := []struct {
		name      string
		input     []bool
		wantWeeks int
		wantSet   []int
	}{
		{"empty yields one week", nil, 1, nil},
		{"partial week is padded", []bool{true, false, true}, 1, []int{0, 2}},
		{"two weeks", append(make([]bool, 7), true), 2, []int{7}},
		{"truncated to four weeks", func() []bool {
			b := make([]bool, 40)
			b[27] = true
			b[35] = true
			return b
		}(), 4, []int{27}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRotationMask(tt.input)
			if m.Weeks() != tt.wantWeeks {
				t.Fatalf("Weeks() = %d, want %d", m.Weeks(), tt.wantWeeks)
			}
			if m.Len() != tt.wantWeeks*7 {
				t.Errorf("Len() = %d, want %d", m.Len(), tt.wantWeeks*7)
			}
			set := map[int]bool{}
			for _, i := range tt.wantSet {
				set[i] = true
			}
			for i := 0; i < m.Len(); i++ {
				if m.At(i) != set[i] {
					t.Errorf("At(%d) = %v, want %v", i, m.At(i), set[i])
				}
			}
		})
	}
}

func TestZeroRotationMask(t *testing.T) {
	var m RotationMask
	if m.Weeks() != 1 || m.Len() != 7 {
		t.Errorf("zero mask should behave as one empty week, got %d weeks", m.Weeks())
	}
	if m.Any() {
		t.Error("zero mask should have no days set")
	}
}

func TestWeekdayAndMonthMasks(t *testing.T) {
	wm := NewWeekdayMask(time.Monday, time.Friday)
	if !wm.Has(time.Monday) || !wm.Has(time.Friday) || wm.Has(time.Sunday) {
		t.Errorf("unexpected weekday mask %v", wm)
	}

	mm := NewMonthDayMask(1, 15, 31, 32, 0)
	if !mm.Has(1) || !mm.Has(15) || !mm.Has(31) {
		t.Errorf("expected 1, 15 and 31 set: %v", mm)
	}
	if mm.Has(32) || mm.Has(0) || mm.Has(2) {
		t.Error("out-of-range or unset days reported as set")
	}

	fromBools := MonthDayMaskFromBools([]bool{false, true})
	if !fromBools.Has(2) || fromBools.Has(1) {
		t.Errorf("MonthDayMaskFromBools mismatch: %v", fromBools)
	}
}

func TestEncodeDecodeBits(t *testing.T) {
	bits := []bool{true, false, false, true}
	s := EncodeBits(bits)
	if s != "1001" {
		t.Fatalf("EncodeBits() = %q, want %q", s, "1001")
	}
	decoded, err := DecodeBits(s)
	if err != nil {
		t.Fatalf("DecodeBits() error: %v", err)
	}
	for i := range bits {
		if decoded[i] != bits[i] {
			t.Errorf("bit %d = %v, want %v", i, decoded[i], bits[i])
		}
	}

	if _, err := DecodeBits("10x"); err == nil {
		t.Error("expected error for invalid mask character")
	}
}

func TestGoalValidate(t *testing.T) {
	tests := []struct {
		name    string
		goal    Goal
		wantErr bool
	}{
		{"every day", EveryDay(), false},
		{"every 3 days", EveryXDays(3), false},
		{"every 0 days", EveryXDays(0), true},
		{"unknown daily", DailyGoal{Pattern: "sometimes"}, true},
		{"weekly", WeeklyGoal{Pattern: WeeklyEveryWeek}, false},
		{"week interval 0", WeeklyGoal{Pattern: WeeklyWeekInterval}, true},
		{"monthly interval 2", MonthlyGoal{Pattern: MonthlyMonthInterval, Interval: 2}, false},
		{"unknown monthly", MonthlyGoal{Pattern: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.goal.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGoal) {
				t.Errorf("expected ErrInvalidGoal, got %v", err)
			}
		})
	}
}

func TestHabitValidate(t *testing.T) {
	h := Habit{ID: uuid.New(), Name: "Read", IntensityLevel: 2, StartDate: time.Now()}
	if err := h.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.IntensityLevel = 5
	if err := h.Validate(); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity for intensity 5, got %v", err)
	}

	h.IntensityLevel = 1
	h.Name = "  "
	if err := h.Validate(); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestPatternOrdering(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := RepeatPattern{ID: uuid.New(), EffectiveFrom: jan, CreationDate: jan}
	b := RepeatPattern{ID: uuid.New(), EffectiveFrom: jun, CreationDate: jan}
	c := RepeatPattern{ID: uuid.New(), EffectiveFrom: jun, CreationDate: jun}

	patterns := []RepeatPattern{a, b, c}
	SortPatternsNewestFirst(patterns)
	if patterns[0].ID != c.ID || patterns[1].ID != b.ID || patterns[2].ID != a.ID {
		t.Errorf("unexpected order: %v", []uuid.UUID{patterns[0].ID, patterns[1].ID, patterns[2].ID})
	}

	h := Habit{Patterns: []RepeatPattern{c, a, b}}
	oldest, ok := h.OldestPattern()
	if !ok || oldest.ID != a.ID {
		t.Errorf("OldestPattern() = %v, want %v", oldest.ID, a.ID)
	}

	if (RepeatPattern{RepeatsPerDay: 1}).Validate() == nil {
		t.Error("pattern without goal should not validate")
	}
}
