package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/promobot/internal/access"
	"github.com/edgard/promobot/internal/audience"
	"github.com/edgard/promobot/internal/metrics"
	"github.com/edgard/promobot/internal/store"
)

var errMaintain = errors.New("disk full")

type failingStore struct {
	store.Store
}

func (failingStore) Maintain(context.Context) error { return errMaintain }

func newDeps(s store.Store) TaskDeps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return TaskDeps{
		Logger:   log,
		Store:    s,
		Gate:     access.NewGate(s, log),
		Audience: audience.NewRegistry(s, log),
	}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	tasks := RegisterAllTasks(newDeps(store.NewMemoryStore()))
	assert.Len(t, tasks, 2)
	assert.Contains(t, tasks, "store_maintenance")
	assert.Contains(t, tasks, "audience_gauge")
}

func TestStoreMaintenanceTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	require.NoError(t, newStoreMaintenanceTask(newDeps(store.NewMemoryStore()))(ctx))

	err := newStoreMaintenanceTask(newDeps(failingStore{store.NewMemoryStore()}))(ctx)
	assert.ErrorIs(t, err, errMaintain)
}

func TestStoreMaintenanceNormalizesRecordFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	paths := store.JSONPaths{
		Users:  filepath.Join(dir, "user_stats.json"),
		Admins: filepath.Join(dir, "admins.json"),
	}
	require.NoError(t, os.WriteFile(paths.Users, []byte(`{"users":[5,1,5]}`), 0o600))
	require.NoError(t, os.WriteFile(paths.Admins, []byte(`{"admins":[9,7]}`), 0o600))
	s, err := store.NewJSONStore(paths, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, newStoreMaintenanceTask(newDeps(s))(ctx))

	data, err := os.ReadFile(paths.Users)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[1,5]}`, string(data))
	data, err = os.ReadFile(paths.Admins)
	require.NoError(t, err)
	assert.JSONEq(t, `{"admins":[7,9]}`, string(data))
}

func TestAudienceGaugeTask(t *testing.T) {
	metrics.MustRegister()
	ctx := context.Background()

	deps := newDeps(store.NewMemoryStore())
	for _, id := range []int64{1, 2, 3} {
		_, err := deps.Audience.Register(ctx, id)
		require.NoError(t, err)
	}
	_, err := deps.Gate.BootstrapOrRequire(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, newAudienceGaugeTask(deps)(ctx))

	assert.Equal(t, 3.0, gaugeValue(t, "promobot_known_users"))
	assert.Equal(t, 1.0, gaugeValue(t, "promobot_admins"))
}

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
