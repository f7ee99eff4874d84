package system

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, output := setupTestDoctorDB(t)

	require.NoError(t, (&DebugDBPathCmd{}).Run(ctx))
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(output()), &got))
	assert.Equal(t, ctx.Store.GetConfigPath(), got["path"])
}

func TestDebugDumpHabitCmd(t *testing.T) {
	ctx, output := setupTestDoctorDB(t)
	_, err := ctx.Habits.CreateHabit(ctx.Ctx(), habits.NewHabit{
		Name:      "Journal",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, (&DebugDumpHabitCmd{Habit: "journal"}).Run(ctx))

	var got struct {
		Name     string `json:"name"`
		Patterns []struct {
			Goal string `json:"goal"`
		} `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal([]byte(output()), &got))
	assert.Equal(t, "Journal", got.Name)
	require.Len(t, got.Patterns, 1)
	assert.Equal(t, "daily", got.Patterns[0].Goal)

	assert.Error(t, (&DebugDumpHabitCmd{Habit: "missing"}).Run(ctx))
}

func TestDebugDumpDayCmd(t *testing.T) {
	ctx, output := setupTestDoctorDB(t)

	require.NoError(t, (&DebugDumpDayCmd{Date: "yesterday"}).Run(ctx))
	assert.Contains(t, output(), `"date": "2024-06-09"`)

	assert.Error(t, (&DebugDumpDayCmd{Date: "June 9"}).Run(ctx))
}

func TestDebugDumpConfigMasksPassword(t *testing.T) {
	ctx, output := setupTestDoctorDB(t)
	ctx.Config.Database = "postgres://me:hunter2@db:5432/habital"

	require.NoError(t, (&DebugDumpConfigCmd{}).Run(ctx))
	assert.NotContains(t, output(), "hunter2")
	assert.Contains(t, output(), "me:****@db")
}
