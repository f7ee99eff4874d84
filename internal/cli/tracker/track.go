package tracker

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui"
)

type MarkCmd struct {
	Habit    string `arg:"" help:"Habit name or ID."`
	Date     string `help:"Date in YYYY-MM-DD format (default: today)."`
	Duration int    `help:"Minutes spent. Logs an additional record."`
	Repeat   bool   `help:"Log one more record instead of toggling the day."`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	date, err := ctx.Date(c.Date)
	if err != nil {
		return err
	}
	day := ctx.Calendar().DayKey(date)
	eval := ctx.Habits.Evaluator()
	if !eval.IsScheduled(h, date) {
		ctx.Printf("Note: %s is not scheduled on %s.\n", h.Name, day)
	}

	if c.Repeat || c.Duration > 0 {
		if _, err := ctx.Habits.Mark(ctx.Ctx(), h.ID, date, habits.MarkOptions{Duration: c.Duration}); err != nil {
			return err
		}
		h, err = ctx.Habits.GetHabit(ctx.Ctx(), h.ID)
		if err != nil {
			return err
		}
		item := ctx.Habits.Item(h, date)
		ctx.Printf("Logged %q for %s (%d/%d)\n", h.Name, day, item.Count, item.Required)
		return nil
	}

	done, err := ctx.Habits.Toggle(ctx.Ctx(), h.ID, date)
	if err != nil {
		return err
	}
	if done {
		ctx.Printf("Marked habit %q for %s\n", h.Name, day)
	} else {
		ctx.Printf("Unmarked habit %q for %s\n", h.Name, day)
	}
	return nil
}

type TodayCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (default: today)."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	date, err := ctx.Date(c.Date)
	if err != nil {
		return err
	}
	items, err := ctx.Habits.Day(ctx.Ctx(), date)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout(), tui.RenderToday(ctx.Calendar(), date, ctx.Habits.Today(), items))
	return nil
}

type CalendarCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	From  string `help:"First day (YYYY-MM-DD)."`
	To    string `help:"Last day (YYYY-MM-DD, default: today)."`
	Days  int    `help:"Days to show when --from is not given." default:"28"`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	from, to, err := ctx.Range(c.From, c.To, c.Days)
	if err != nil {
		return err
	}
	days, err := ctx.Habits.Calendar(ctx.Ctx(), h, from, to)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout(), tui.RenderCalendar(ctx.Calendar(), h, days, ctx.Habits.Today()))
	return nil
}

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup("tui")

	p := tea.NewProgram(tui.NewModel(ctx.Habits.Uncached()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
