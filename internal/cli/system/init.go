package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/postgres"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx()); err != nil {
		return err
	}
	ctx.Printf("Initialized habital storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

// reset deletes the local database file. PostgreSQL databases are never dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if storage.IsPostgres(dbPath) {
		return errors.New("--force is only supported for SQLite databases")
	}
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Confirm("Delete the existing database?", dbPath); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup("pre-reset")
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if storage.IsPostgres(source) {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

// copyFrom copies every entity from source in dependency order inside one
// destination transaction.
func (c *InitCmd) copyFrom(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	lists, err := src.Lists(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read lists from source: %w", err)
	}
	habits, err := src.Habits(ctx.Ctx(), storage.HabitFilter{
		IncludeArchived: true,
		WithPatterns:    true,
		WithCompletions: true,
	})
	if err != nil {
		return fmt.Errorf("failed to read habits from source: %w", err)
	}

	var patterns, completions int
	err = ctx.Store.InTx(ctx.Ctx(), func(tx storage.Repository) error {
		for _, list := range lists {
			if err := tx.SaveList(ctx.Ctx(), list); err != nil {
				return fmt.Errorf("failed to save list %s: %w", list.ID, err)
			}
		}
		for _, h := range habits {
			if err := tx.SaveHabit(ctx.Ctx(), h); err != nil {
				return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
			}
			for _, p := range h.Patterns {
				if err := tx.SavePattern(ctx.Ctx(), p); err != nil {
					return fmt.Errorf("failed to save repeat pattern %s: %w", p.ID, err)
				}
				patterns++
			}
			for _, comp := range h.Completions {
				if err := tx.SaveCompletion(ctx.Ctx(), comp); err != nil {
					return fmt.Errorf("failed to save completion %s: %w", comp.ID, err)
				}
				completions++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx.Printf("  Copied %d lists\n", len(lists))
	ctx.Printf("  Copied %d habits\n", len(habits))
	ctx.Printf("  Copied %d repeat patterns\n", patterns)
	ctx.Printf("  Copied %d completions\n", completions)
	return nil
}
