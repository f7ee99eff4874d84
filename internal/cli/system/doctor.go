package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
	"github.com/eliasosarumwense/Habital-sub003/internal/validation"
)

// skipError marks a check that does not apply to the current setup.
type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

type DoctorCmd struct {
	Fix bool `help:"Remove orphan completions and shadowed repeat patterns."`
}

type check struct {
	name string
	// warnOnly checks never fail the run.
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	run     func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	return []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Habit integrity", needsDB: true, run: cmd.checkHabitsIntegrity},
		{name: "Orphan completions", needsDB: true, run: cmd.checkOrphanCompletions},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for i, c := range cmd.checks() {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, new(skipError)):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
		if err != nil {
			logger.Debug("Doctor check", "check", c.name, "err", err)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if _, err := ctx.Store.Count(ctx.Ctx(), storage.KindHabit); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	switch {
	case current < latest:
		return fmt.Errorf("schema version %d is behind %d, run 'habital migrate'", current, latest)
	case current > latest:
		return fmt.Errorf("schema version %d is newer than this binary supports (%d)", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Backups == nil {
		return skipError{"not a local SQLite database"}
	}
	backups, err := ctx.Backups.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habital backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q in config", ctx.Config.Timezone)
	}
	return nil
}

func loadAll(ctx *cli.Context) ([]models.Habit, error) {
	return ctx.Store.Habits(ctx.Ctx(), storage.HabitFilter{
		IncludeArchived: true,
		WithPatterns:    true,
		WithCompletions: true,
	})
}

func (cmd *DoctorCmd) checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := loadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	result := validation.New(ctx.Calendar()).ValidateHabits(habits)
	if !result.HasConflicts() {
		return nil
	}

	if cmd.Fix {
		actions := validation.AutoFixShadowedPatterns(result.Conflicts, func(id uuid.UUID) error {
			return ctx.Habits.Unschedule(ctx.Ctx(), id)
		})
		for _, a := range actions {
			ctx.Printf("   fixed: %s\n", a.Action)
		}
		if habits, err = loadAll(ctx); err != nil {
			return fmt.Errorf("failed to reload habits: %w", err)
		}
		result = validation.New(ctx.Calendar()).ValidateHabits(habits)
		if !result.HasConflicts() {
			return nil
		}
	}
	return fmt.Errorf("%d problem(s)\n%s", len(result.Conflicts), result.FormatReport())
}

func (cmd *DoctorCmd) checkOrphanCompletions(ctx *cli.Context) error {
	orphans, err := ctx.Store.OrphanCompletions(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to scan completions: %w", err)
	}
	if len(orphans) == 0 {
		return nil
	}
	if !cmd.Fix {
		return fmt.Errorf("%d completion(s) reference missing habits, run 'habital doctor --fix'", len(orphans))
	}

	for _, c := range orphans {
		if err := ctx.Store.DeleteCompletion(ctx.Ctx(), c.ID); err != nil {
			return fmt.Errorf("failed to delete orphan completion %s: %w", c.ID, err)
		}
	}
	ctx.Printf("   fixed: removed %d orphan completion(s)\n", len(orphans))
	return nil
}
