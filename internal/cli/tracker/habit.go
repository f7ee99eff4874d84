package tracker

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	Ls         HabitLsCmd         `cmd:"" help:"List habits."`
	Show       HabitShowCmd       `cmd:"" help:"Show a habit and its repeat patterns."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit."`
	Archive    HabitArchiveCmd    `cmd:"" help:"Archive or restore a habit."`
	Delete     HabitDeleteCmd     `cmd:"" aliases:"rm" help:"Delete a habit with its patterns and completions."`
	Schedule   HabitScheduleCmd   `cmd:"" help:"Change a habit's goal from a given day on."`
	Unschedule HabitUnscheduleCmd `cmd:"" help:"Remove a repeat pattern."`
}

// parseColor accepts #RRGGBB or #RRGGBBAA.
func parseColor(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || (len(b) != 3 && len(b) != 4) {
		return nil, fmt.Errorf("invalid color %q (expected #RRGGBB or #RRGGBBAA)", s)
	}
	return b, nil
}

func resolveList(ctx *cli.Context, ref string) (uuid.NullUUID, error) {
	if ref == "" {
		return uuid.NullUUID{}, nil
	}
	list, err := ctx.Habits.FindList(ctx.Ctx(), ref)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: list.ID, Valid: true}, nil
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Longer description."`
	Icon        string `help:"Icon name or emoji."`
	Color       string `help:"Color as #RRGGBB."`
	Bad         bool   `help:"Track a habit to avoid. Logged records count as relapses."`
	Start       string `help:"Start date (YYYY-MM-DD, default: today)."`
	Intensity   int    `help:"Intensity level 1-4." default:"1"`
	List        string `help:"List name or ID to add the habit to."`

	cli.GoalFlags `embed:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if existing, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Name); err == nil && strings.EqualFold(existing.Name, strings.TrimSpace(c.Name)) {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	goal, err := c.Goal()
	if err != nil {
		return err
	}
	start, err := ctx.Date(c.Start)
	if err != nil {
		return err
	}
	color, err := parseColor(c.Color)
	if err != nil {
		return err
	}
	listID, err := resolveList(ctx, c.List)
	if err != nil {
		return err
	}

	h, err := ctx.Habits.CreateHabit(ctx.Ctx(), habits.NewHabit{
		Name:           c.Name,
		Description:    c.Description,
		Icon:           c.Icon,
		Color:          color,
		IsBadHabit:     c.Bad,
		StartDate:      start,
		IntensityLevel: c.Intensity,
		ListID:         listID,
		Goal:           goal,
		FollowUp:       c.FollowUp,
		RepeatsPerDay:  c.Repeats,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s, %s)\n", h.Name, shortID(h.ID), cli.FormatGoal(goal))
	return nil
}

type HabitLsCmd struct {
	All  bool   `help:"Include archived habits."`
	List string `help:"Only show habits of this list."`
}

func (c *HabitLsCmd) Run(ctx *cli.Context) error {
	filter := storage.HabitFilter{IncludeArchived: c.All}
	if c.List != "" {
		listID, err := resolveList(ctx, c.List)
		if err != nil {
			return err
		}
		filter.ListID = listID
	}

	all, err := ctx.Habits.Habits(ctx.Ctx(), filter)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today := ctx.Habits.Today()
	eval := ctx.Habits.Evaluator()
	for _, h := range all {
		goal := "no schedule"
		if p, ok := eval.GoverningPattern(h, today); ok {
			goal = cli.FormatGoal(p.Goal)
		} else if len(h.Patterns) > 0 {
			goal = cli.FormatGoal(h.Patterns[0].Goal) + " from " + ctx.Calendar().DayKey(h.Patterns[0].EffectiveFrom)
		}

		var status string
		if h.IsBadHabit {
			status += " [BAD]"
		}
		if h.IsArchived {
			status += " [ARCHIVED]"
		}
		ctx.Printf("%s  %-24s %s%s\n", shortID(h.ID), h.Name, goal, status)
	}
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()

	ctx.Printf("%s\n", h.Name)
	ctx.Printf("  ID:          %s\n", h.ID)
	if h.Description != "" {
		ctx.Printf("  Description: %s\n", h.Description)
	}
	ctx.Printf("  Started:     %s\n", cal.DayKey(h.StartDate))
	ctx.Printf("  Intensity:   %d\n", h.IntensityLevel)
	ctx.Printf("  Bad habit:   %v\n", h.IsBadHabit)
	ctx.Printf("  Archived:    %v\n", h.IsArchived)
	if h.ListID.Valid {
		if list, err := ctx.Store.GetList(ctx.Ctx(), h.ListID.UUID); err == nil {
			ctx.Printf("  List:        %s\n", list.Name)
		}
	}
	if h.LastCompletionDate != nil {
		ctx.Printf("  Last done:   %s\n", cal.DayKey(*h.LastCompletionDate))
	}
	ctx.Printf("  Records:     %d\n", len(h.Completions))

	ctx.Println("\nRepeat patterns (newest first):")
	for _, p := range h.Patterns {
		extra := ""
		if p.RepeatsPerDay > 1 {
			extra += fmt.Sprintf(", %dx per day", p.RepeatsPerDay)
		}
		if p.FollowUp {
			extra += ", follow-up"
		}
		ctx.Printf("  %s  from %s  %s%s\n", shortID(p.ID), cal.DayKey(p.EffectiveFrom), cli.FormatGoal(p.Goal), extra)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or ID."`
	Name        *string `help:"New name."`
	Description *string `help:"New description."`
	Icon        *string `help:"New icon."`
	Color       *string `help:"New color as #RRGGBB (empty clears it)."`
	Bad         *bool   `help:"Mark as a habit to avoid."`
	Start       *string `help:"New start date (YYYY-MM-DD)."`
	Intensity   *int    `help:"New intensity level 1-4."`
	List        *string `help:"Move to a list (empty makes the habit standalone)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		h.Name = strings.TrimSpace(*c.Name)
		updated = true
	}
	if c.Description != nil {
		h.Description = *c.Description
		updated = true
	}
	if c.Icon != nil {
		h.Icon = *c.Icon
		updated = true
	}
	if c.Color != nil {
		if h.Color, err = parseColor(*c.Color); err != nil {
			return err
		}
		updated = true
	}
	if c.Bad != nil {
		h.IsBadHabit = *c.Bad
		updated = true
	}
	if c.Start != nil {
		if h.StartDate, err = ctx.Date(*c.Start); err != nil {
			return err
		}
		updated = true
	}
	if c.Intensity != nil {
		h.IntensityLevel = *c.Intensity
		updated = true
	}
	if c.List != nil {
		if h.ListID, err = resolveList(ctx, *c.List); err != nil {
			return err
		}
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified.")
		return nil
	}
	if err := ctx.Habits.UpdateHabit(ctx.Ctx(), h); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", h.Name)
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Undo  bool   `help:"Restore an archived habit."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Habits.SetArchived(ctx.Ctx(), h.ID, !c.Undo); err != nil {
		return err
	}
	if c.Undo {
		ctx.Printf("Restored habit: %s\n", h.Name)
	} else {
		ctx.Printf("Archived habit: %s\n", h.Name)
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	desc := fmt.Sprintf("%d repeat patterns and %d completion records are deleted with it.", len(h.Patterns), len(h.Completions))
	if err := ctx.Confirm(fmt.Sprintf("Delete habit %q?", h.Name), desc); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup("pre-delete")
	if err := ctx.Habits.DeleteHabit(ctx.Ctx(), h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitScheduleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	From  string `help:"First day the new goal applies (YYYY-MM-DD, default: today)."`

	cli.GoalFlags `embed:""`
}

func (c *HabitScheduleCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	goal, err := c.Goal()
	if err != nil {
		return err
	}
	from, err := ctx.Date(c.From)
	if err != nil {
		return err
	}
	if from.Before(h.StartDate) {
		return fmt.Errorf("%w: %s is before the habit starts (%s)",
			models.ErrInvalidEntity, ctx.Calendar().DayKey(from), ctx.Calendar().DayKey(h.StartDate))
	}

	p, err := ctx.Habits.Schedule(ctx.Ctx(), h.ID, from, goal, c.FollowUp, c.Repeats)
	if err != nil {
		return err
	}
	ctx.Printf("Scheduled %s: %s from %s\n", h.Name, cli.FormatGoal(p.Goal), ctx.Calendar().DayKey(p.EffectiveFrom))
	return nil
}

type HabitUnscheduleCmd struct {
	Habit   string `arg:"" help:"Habit name or ID."`
	Pattern string `arg:"" help:"Repeat pattern ID or ID prefix (see 'habit show')."`
}

func (c *HabitUnscheduleCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Habits.FindHabit(ctx.Ctx(), c.Habit)
	if err != nil {
		return err
	}
	if len(h.Patterns) <= 1 {
		return errors.New("cannot remove the only repeat pattern; use 'habit schedule' to replace it")
	}

	var match []models.RepeatPattern
	for _, p := range h.Patterns {
		if strings.HasPrefix(p.ID.String(), strings.ToLower(c.Pattern)) {
			match = append(match, p)
		}
	}
	switch len(match) {
	case 0:
		return fmt.Errorf("pattern %q: %w", c.Pattern, storage.ErrNotFound)
	case 1:
	default:
		return fmt.Errorf("pattern reference %q is ambiguous (%d matches)", c.Pattern, len(match))
	}

	if err := ctx.Habits.Unschedule(ctx.Ctx(), match[0].ID); err != nil {
		return err
	}
	ctx.Printf("Removed pattern %s (%s) from %s\n", shortID(match[0].ID), cli.FormatGoal(match[0].Goal), h.Name)
	return nil
}
