package tracker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

type ListCmd struct {
	Add    ListAddCmd    `cmd:"" help:"Add a habit list."`
	Ls     ListLsCmd     `cmd:"" help:"Show habit lists."`
	Delete ListDeleteCmd `cmd:"" aliases:"rm" help:"Delete a list. Its habits become standalone."`
}

type ListAddCmd struct {
	Name string `arg:"" help:"List name."`
	Icon string `help:"Icon name or emoji."`
}

func (c *ListAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Habits.FindList(ctx.Ctx(), c.Name); err == nil {
		return fmt.Errorf("list %q already exists", c.Name)
	}
	list, err := ctx.Habits.CreateList(ctx.Ctx(), c.Name, c.Icon)
	if err != nil {
		return err
	}
	ctx.Printf("Added list: %s\n", list.Name)
	return nil
}

type ListLsCmd struct{}

func (c *ListLsCmd) Run(ctx *cli.Context) error {
	lists, err := ctx.Store.Lists(ctx.Ctx())
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		ctx.Println("No lists found.")
		return nil
	}

	for _, l := range lists {
		members, err := ctx.Store.Habits(ctx.Ctx(), storage.HabitFilter{
			ListID:          uuid.NullUUID{UUID: l.ID, Valid: true},
			IncludeArchived: true,
		})
		if err != nil {
			return err
		}
		icon := l.Icon
		if icon != "" {
			icon += " "
		}
		ctx.Printf("%s  %s%s (%d habits)\n", shortID(l.ID), icon, l.Name, len(members))
	}
	return nil
}

type ListDeleteCmd struct {
	Ref string `arg:"" help:"List name or ID."`
}

func (c *ListDeleteCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Habits.FindList(ctx.Ctx(), c.Ref)
	if err != nil {
		return err
	}
	if err := ctx.Confirm(fmt.Sprintf("Delete list %q?", list.Name), "Its habits are kept and become standalone."); err != nil {
		return err
	}
	if err := ctx.Habits.DeleteList(ctx.Ctx(), list.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted list: %s\n", list.Name)
	return nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
