package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
)

var (
	// ErrNotFound is returned by stores and services for a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when an import or export is already running.
	ErrBusy = errors.New("another import or export is in progress")
	// ErrAborted is returned when the user declines a confirmation prompt.
	ErrAborted = errors.New("aborted")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Error: %v\n%s", err, hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a follow-up suggestion for well-known errors.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrBusy):
		return "Hint: wait for the running import or export to finish and try again."
	case errors.Is(err, ErrNotFound):
		return "Hint: run 'habital habit ls --all' to see the available habits."
	default:
		return ""
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrAborted):
		return 0
	case errors.Is(err, ErrBusy):
		return 75 // EX_TEMPFAIL
	default:
		return 1
	}
}

// Fatal logs an error and exits the program
func Fatal(err error) {
	if err == nil {
		return
	}
	code := ExitCode(err)
	if code == 0 {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(0)
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(code)
}
