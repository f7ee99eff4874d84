package settings

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/config"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	var out bytes.Buffer
	return &cli.Context{Config: cfg, Out: &out}, &out
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&SettingsCmd{List: true}).Run(ctx))
	assert.Contains(t, out.String(), "Week Start:   sunday")
	assert.Contains(t, out.String(), "Server Addr:  127.0.0.1:8420")
}

func TestSettingsCmd_ListHidesConnectionString(t *testing.T) {
	ctx, out := setupTestContext(t)
	ctx.Config.Database = "postgres://me@db:5432/habital"

	require.NoError(t, (&SettingsCmd{List: true}).Run(ctx))
	assert.NotContains(t, out.String(), "me@db")
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SettingsCmd{
		Timezone:   ptr("Europe/Berlin"),
		WeekStart:  ptr("monday"),
		ServerAddr: ptr("127.0.0.1:9999"),
		Debug:      ptr(true),
	}
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "Settings updated successfully.")

	cfg, err := config.Load(ctx.Config.Dir)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.True(t, cfg.Debug)
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&SettingsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No changes specified")
}

func TestSettingsCmd_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		cmd  *SettingsCmd
	}{
		{"timezone", &SettingsCmd{Timezone: ptr("Mars/Olympus")}},
		{"week start", &SettingsCmd{WeekStart: ptr("friday")}},
		{"empty database", &SettingsCmd{Database: ptr("")}},
		{"database password", &SettingsCmd{Database: ptr("postgres://me:secret@db/habital")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			// A valid flag alongside an invalid one must not be written.
			tt.cmd.ExportDir = ptr("/tmp/exports")
			assert.Error(t, tt.cmd.Run(ctx))

			cfg, err := config.Load(ctx.Config.Dir)
			require.NoError(t, err)
			assert.NotEqual(t, "/tmp/exports", cfg.ExportDir)
		})
	}
}

func TestSettingsCmd_KeyringReference(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&SettingsCmd{Database: ptr("keyring:")}).Run(ctx))
	cfg, err := config.Load(ctx.Config.Dir)
	require.NoError(t, err)
	assert.Equal(t, "keyring:", cfg.Database)
}
