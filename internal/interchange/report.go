package interchange

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ParseError marks a row that could not be read: malformed UUID,
// unparsable date or too few columns. The row is skipped.
type ParseError struct {
	Line   int
	Type   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (%s): %s", e.Line, e.Type, e.Reason)
}

// ReferenceError marks a row whose owning entity cannot be resolved. The
// row is skipped.
type ReferenceError struct {
	Line   int
	Type   string
	Target string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("line %d (%s): unknown %s %s", e.Line, e.Type, e.Target, e.ID)
}

// ValidationError marks a field that was replaced by a default.
type ValidationError struct {
	Line    int
	Type    string
	Field   string
	Value   string
	Default string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d (%s): invalid %s %q, using %s", e.Line, e.Type, e.Field, e.Value, e.Default)
}

// PersistenceError wraps a store failure. It aborts the run.
type PersistenceError struct {
	Pass string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s pass: %v", e.Pass, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Diagnostic is one entry of the import log.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	// Err carries the typed error for skipped or defaulted rows.
	Err error `json:"-" yaml:"-"`
}

// Counts tallies rows per entity type.
type Counts struct {
	Lists       int `json:"lists" yaml:"lists"`
	Habits      int `json:"habits" yaml:"habits"`
	Patterns    int `json:"patterns" yaml:"patterns"`
	Completions int `json:"completions" yaml:"completions"`
}

func (c Counts) Total() int {
	return c.Lists + c.Habits + c.Patterns + c.Completions
}

// Report summarizes an import.
type Report struct {
	Imported Counts `json:"imported" yaml:"imported"`
	Skipped  Counts `json:"skipped" yaml:"skipped"`
	// Duplicates counts completions already present for the same habit and date.
	Duplicates int          `json:"duplicates" yaml:"duplicates"`
	Orphans    int          `json:"orphans" yaml:"orphans"`
	Atomic     bool         `json:"atomic" yaml:"atomic"`
	Log        []Diagnostic `json:"log" yaml:"log"`
}

func (r *Report) info(format string, args ...any) {
	r.Log = append(r.Log, Diagnostic{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warn(err error) {
	r.Log = append(r.Log, Diagnostic{Severity: SeverityWarning, Message: err.Error(), Err: err})
}

// Warnings returns the typed errors recorded for skipped or defaulted rows.
func (r *Report) Warnings() []error {
	var errs []error
	for _, d := range r.Log {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errs
}

// CountErrors returns how many recorded warnings match target's type.
func CountErrors[T error](r *Report) int {
	n := 0
	for _, err := range r.Warnings() {
		var target T
		if errors.As(err, &target) {
			n++
		}
	}
	return n
}

// Summary renders a one-paragraph human readable result.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Imported %s lists, %s habits, %s repeat patterns and %s completions.",
		humanize.Comma(int64(r.Imported.Lists)), humanize.Comma(int64(r.Imported.Habits)),
		humanize.Comma(int64(r.Imported.Patterns)), humanize.Comma(int64(r.Imported.Completions)))
	if skipped := r.Skipped.Total(); skipped > 0 {
		fmt.Fprintf(&sb, " Skipped %s rows.", humanize.Comma(int64(skipped)))
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(&sb, " Ignored %s duplicate completions.", humanize.Comma(int64(r.Duplicates)))
	}
	if r.Orphans > 0 {
		fmt.Fprintf(&sb, " Found %s orphan completions.", humanize.Comma(int64(r.Orphans)))
	}
	return sb.String()
}
