package data

import (
	"fmt"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/stats"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui"
)

type StatsCmd struct {
	Habit  string `arg:"" optional:"" help:"Limit to one habit (name or ID)."`
	From   string `help:"First day (YYYY-MM-DD)."`
	To     string `help:"Last day (YYYY-MM-DD, default: today)."`
	Days   int    `help:"Days to cover when --from is not given." default:"30"`
	All    bool   `help:"Include archived habits."`
	Format string `help:"Output format." enum:"table,json,yaml" default:"table"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	from, to, err := ctx.Range(c.From, c.To, c.Days)
	if err != nil {
		return err
	}

	var list []models.Habit
	if c.Habit != "" {
		h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
		if err != nil {
			return err
		}
		list = []models.Habit{h}
	} else if list, err = ctx.Habits.Habits(ctx.Ctx(), storage.HabitFilter{IncludeArchived: c.All}); err != nil {
		return err
	}

	summary := stats.Compute(ctx.Habits.Evaluator(), list, from, to)
	if stats.Format(c.Format) == stats.FormatTable {
		fmt.Fprint(ctx.Stdout(), tui.RenderStats(summary))
		return nil
	}

	out, err := stats.Encode(summary, stats.Format(c.Format))
	if err != nil {
		return err
	}
	_, err = ctx.Stdout().Write(out)
	return err
}
