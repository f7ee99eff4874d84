package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
)

// Config holds the application configuration
type Config struct {
	Database  string `mapstructure:"database"`
	Timezone  string `mapstructure:"timezone"`
	WeekStart string `mapstructure:"week_start"`
	Debug     bool   `mapstructure:"debug"`
	ExportDir string `mapstructure:"export_dir"`
	Server    struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	// Dir is the directory holding config.yaml, logs and the default database.
	Dir string `mapstructure:"-"`
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultDir returns the expanded default configuration directory.
func DefaultDir() string {
	return ExpandHome(constants.DefaultConfigDir)
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType(constants.ConfigFileType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(constants.SettingDatabase, filepath.Join(dir, constants.DefaultDBName))
	v.SetDefault(constants.SettingTimezone, constants.DefaultTimezone)
	v.SetDefault(constants.SettingWeekStart, constants.DefaultWeekStart)
	v.SetDefault(constants.SettingDebug, constants.DefaultDebug)
	v.SetDefault(constants.SettingExportDir, ".")
	v.SetDefault(constants.SettingServerAddr, constants.DefaultServerAddr)
	return v
}

// Load reads config.yaml from dir, writing one with the defaults when it
// does not exist yet. Environment variables prefixed with HABITAL_ override
// file values.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	dir = ExpandHome(dir)

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Config{}, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := v.SafeWriteConfigAs(Path(dir)); err != nil {
			return Config{}, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Dir = dir
	cfg.Database = ExpandHome(cfg.Database)
	cfg.ExportDir = ExpandHome(cfg.ExportDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns the config file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName+"."+constants.ConfigFileType)
}

// Validate checks the timezone and week start settings.
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q in config", c.Timezone)
	}
	if _, err := utils.ParseWeekStart(c.WeekStart); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone.
func (c Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday returns the configured week start.
func (c Config) FirstWeekday() time.Weekday {
	wd, err := utils.ParseWeekStart(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// Set persists a single key to config.yaml in dir.
func Set(dir, key string, value any) error {
	dir = ExpandHome(dir)
	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(Path(dir)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
