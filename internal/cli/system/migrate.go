package system

import (
	"fmt"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= latest {
		ctx.Printf("No migrations to apply. Database is up to date (version %d).\n", current)
		return nil
	}

	ctx.Printf("Schema version %d, latest %d.\n", current, latest)
	ctx.PerformAutomaticBackup("pre-migrate")
	if err := ctx.Store.Init(ctx.Ctx()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, _, err = ctx.Store.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	ctx.Printf("Successfully migrated to version %d.\n", current)
	return nil
}
