package system

import (
	"encoding/json"
	"fmt"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/config"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

type DebugCmd struct {
	DBPath     *DebugDBPathCmd     `cmd:"" help:"Show database path."`
	DumpHabit  *DebugDumpHabitCmd  `cmd:"" help:"Dump habit data as JSON."`
	DumpDay    *DebugDumpDayCmd    `cmd:"" help:"Dump the evaluated schedule of a day as JSON."`
	DumpConfig *DebugDumpConfigCmd `cmd:"" help:"Dump the effective configuration as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if storage.IsPostgres(path) {
		path = maskPassword(path)
	}
	return printJSON(ctx, map[string]string{"path": path})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

type patternDump struct {
	models.RepeatPattern
	Goal string `json:"goal"`
}

type habitDump struct {
	models.Habit
	Patterns []patternDump `json:"patterns"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Habits.FindHabit(ctx.Ctx(), cmd.Habit)
	if err != nil {
		return fmt.Errorf("failed to get habit: %w", err)
	}

	dump := habitDump{Habit: habit}
	for _, p := range habit.Patterns {
		dump.Patterns = append(dump.Patterns, patternDump{RepeatPattern: p, Goal: cli.FormatGoal(p.Goal)})
	}
	return printJSON(ctx, dump)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date to dump (YYYY-MM-DD, 'today' or 'yesterday')."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	date, err := ctx.Date(cmd.Date)
	if err != nil {
		return err
	}
	items, err := ctx.Habits.Day(ctx.Ctx(), date)
	if err != nil {
		return fmt.Errorf("failed to evaluate day: %w", err)
	}
	return printJSON(ctx, map[string]any{
		"date":  ctx.Calendar().DayKey(date),
		"items": items,
	})
}

type DebugDumpConfigCmd struct{}

func (cmd *DebugDumpConfigCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	if storage.IsPostgres(cfg.Database) {
		cfg.Database = maskPassword(cfg.Database)
	}
	return printJSON(ctx, struct {
		config.Config
		Path string `json:"path"`
	}{cfg, config.Path(cfg.Dir)})
}
