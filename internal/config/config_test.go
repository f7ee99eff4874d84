package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "habital")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, Path(dir))
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, constants.DefaultDBName), cfg.Database)
	assert.Equal(t, constants.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, time.Sunday, cfg.FirstWeekday())
	assert.Equal(t, constants.DefaultServerAddr, cfg.Server.Addr)
	assert.False(t, cfg.Debug)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := "timezone: UTC\nweek_start: monday\nserver:\n  addr: 0.0.0.0:9000\n"
	require.NoError(t, os.WriteFile(Path(dir), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, time.Monday, cfg.FirstWeekday())
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HABITAL_WEEK_START", "monday")
	t.Setenv("HABITAL_DEBUG", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, time.Monday, cfg.FirstWeekday())
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("week_start: friday\n"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("timezone: Nowhere/Special\n"), 0644))

	_, err = Load(dir)
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Set(dir, constants.SettingTimezone, "UTC"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config"), ExpandHome("~/.config"))
	assert.Equal(t, "/var/lib/habital", ExpandHome("/var/lib/habital"))
}
