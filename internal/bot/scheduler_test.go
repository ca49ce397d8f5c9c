package bot

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/promobot/internal/bot/tasks"
	"github.com/edgard/promobot/internal/config"
)

func noopTask(context.Context) error { return nil }

func TestSchedulerStartSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"store_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
		"audience_gauge":    {Enabled: false, Schedule: "0 */5 * * * *"},
		"unregistered":      {Enabled: true, Schedule: "0 0 * * * *"},
		"no_schedule":       {Enabled: true},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"store_maintenance": noopTask,
		"audience_gauge":    noopTask,
		"no_schedule":       noopTask,
	}

	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerRunning)

	jobs := s.Jobs()
	sort.Strings(jobs)
	assert.Equal(t, []string{"store_maintenance"}, jobs)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSchedulerInvalidCronIsSkipped(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"store_maintenance": {Enabled: true, Schedule: "not a cron"},
	}}
	s, err := NewScheduler(nil, cfg, map[string]tasks.ScheduledTaskFunc{"store_maintenance": noopTask})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, s.Jobs())
	require.NoError(t, s.Stop())
}
