package audience_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/promobot/internal/audience"
	"github.com/edgard/promobot/internal/store"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := audience.NewRegistry(store.NewMemoryStore(), nil)

	isNew, err := reg.Register(ctx, 10)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = reg.Register(ctx, 10)
	require.NoError(t, err)
	assert.False(t, isNew)

	_, err = reg.Register(ctx, 3)
	require.NoError(t, err)

	count, err := reg.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10}, all)
}

func TestRegisterConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := audience.NewRegistry(store.NewMemoryStore(), nil)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := reg.Register(ctx, id)
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	count, err := reg.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestNormalizeDoesNotLoseRegistrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	paths := store.JSONPaths{
		Users:  filepath.Join(dir, "user_stats.json"),
		Admins: filepath.Join(dir, "admins.json"),
	}
	s, err := store.NewJSONStore(paths, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	reg := audience.NewRegistry(s, nil)

	for i := int64(0); i < 200; i++ {
		require.NoError(t, os.WriteFile(paths.Users, []byte(`{"users":[3,1,1,2,2,3]}`), 0o600))
		id := 1000 + i

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.Normalize(ctx))
		}()
		go func() {
			defer wg.Done()
			_, err := reg.Register(ctx, id)
			assert.NoError(t, err)
		}()
		wg.Wait()

		all, err := reg.All(ctx)
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2, 3, id}, all, "iteration %d", i)
	}
}
