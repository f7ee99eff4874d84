package settings

import (
	"errors"
	"fmt"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/config"
	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/keyring"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage/postgres"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Database   *string `help:"SQLite path, postgres:// URL, or 'keyring:' to use the stored connection."`
	Timezone   *string `help:"IANA time zone used to decide which day it is (e.g. Europe/Berlin, Local)."`
	WeekStart  *string `help:"First day of the week (sunday or monday)."`
	ExportDir  *string `help:"Default directory for exports."`
	ServerAddr *string `help:"Listen address of the API server."`
	Debug      *bool   `help:"Enable debug logging."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.List {
		cfg := ctx.Config
		db := cfg.Database
		if storage.IsPostgres(db) {
			db = "(PostgreSQL connection)"
		}
		ctx.Println("Current Settings:")
		ctx.Printf("  Config File:  %s\n", config.Path(cfg.Dir))
		ctx.Printf("  Database:     %s\n", db)
		ctx.Printf("  Timezone:     %s\n", cfg.Timezone)
		ctx.Printf("  Week Start:   %s\n", cfg.WeekStart)
		ctx.Printf("  Export Dir:   %s\n", cfg.ExportDir)
		ctx.Printf("  Server Addr:  %s\n", cfg.Server.Addr)
		ctx.Printf("  Debug:        %v\n", cfg.Debug)
		return nil
	}

	updates, err := c.updates()
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	for _, u := range updates {
		if err := config.Set(ctx.Config.Dir, u.key, u.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", u.key, err)
		}
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

type update struct {
	key   string
	value any
}

// updates validates every given flag before anything is written.
func (c *SettingsCmd) updates() ([]update, error) {
	var out []update
	if c.Database != nil {
		if err := validateDatabase(*c.Database); err != nil {
			return nil, err
		}
		out = append(out, update{constants.SettingDatabase, *c.Database})
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return nil, fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		out = append(out, update{constants.SettingTimezone, *c.Timezone})
	}
	if c.WeekStart != nil {
		if _, err := utils.ParseWeekStart(*c.WeekStart); err != nil {
			return nil, err
		}
		out = append(out, update{constants.SettingWeekStart, *c.WeekStart})
	}
	if c.ExportDir != nil {
		out = append(out, update{constants.SettingExportDir, *c.ExportDir})
	}
	if c.ServerAddr != nil {
		out = append(out, update{constants.SettingServerAddr, *c.ServerAddr})
	}
	if c.Debug != nil {
		out = append(out, update{constants.SettingDebug, *c.Debug})
	}
	return out, nil
}

func validateDatabase(db string) error {
	switch {
	case db == "":
		return errors.New("database cannot be empty")
	case db == keyring.Reference:
		return nil
	case storage.IsPostgres(db):
		if err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("connection string contains a password; store it with 'habital keyring set' and use --database %s", keyring.Reference)
			}
			return err
		}
	}
	return nil
}
