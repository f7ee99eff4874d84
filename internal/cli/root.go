package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/eliasosarumwense/Habital-sub003/internal/backup"
	"github.com/eliasosarumwense/Habital-sub003/internal/config"
	apperrors "github.com/eliasosarumwense/Habital-sub003/internal/errors"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/recurrence"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
)

type Context struct {
	// Context bounds store calls. Nil means Background.
	Context context.Context

	Config config.Config
	Store  storage.Provider
	Habits *habits.Service
	Codec  *interchange.Codec
	// Backups is nil when the database is not a local SQLite file.
	Backups *backup.Manager

	// Out receives command output. Nil means stdout.
	Out io.Writer
	// Yes answers every confirmation prompt with yes.
	Yes bool
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Ctx returns the command context, falling back to Background.
func (c *Context) Ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

func (c *Context) Calendar() recurrence.Calendar {
	return c.Habits.Evaluator().Calendar()
}

// Confirm returns ErrAborted unless the user agrees or --yes was given.
func (c *Context) Confirm(title, description string) error {
	if c.Yes {
		return nil
	}
	ok, err := tui.Confirm(title, description)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrAborted
	}
	return nil
}

// PerformAutomaticBackup creates a backup and only logs a failure.
func (c *Context) PerformAutomaticBackup(reason string) {
	if c.Backups == nil {
		return
	}
	if _, err := c.Backups.Create(c.Ctx(), reason); err != nil {
		logger.Warn("Automatic backup failed", "reason", reason, "error", err)
	}
}

// Date parses a YYYY-MM-DD argument in the configured time zone. Empty,
// "today" and "yesterday" are relative to the service clock.
func (c *Context) Date(s string) (time.Time, error) {
	today := c.Habits.Today()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	return utils.ParseDateInLocation(s, c.Calendar().Location)
}

// Range parses a from/to pair. Missing ends default to the last days
// ending today.
func (c *Context) Range(from, to string, days int) (time.Time, time.Time, error) {
	end, err := c.Date(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := end.AddDate(0, 0, -(days - 1))
	if from != "" {
		if start, err = c.Date(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range ends (%s) before it starts (%s)",
			c.Calendar().DayKey(end), c.Calendar().DayKey(start))
	}
	return start, end, nil
}
