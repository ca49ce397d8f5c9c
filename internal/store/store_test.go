package store_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/promobot/internal/config"
	"github.com/edgard/promobot/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJSONStore(t *testing.T) (store.Store, store.JSONPaths) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	paths := store.JSONPaths{
		Users:  filepath.Join(dir, "user_stats.json"),
		Admins: filepath.Join(dir, "admins.json"),
	}
	s, err := store.NewJSONStore(paths, discardLogger())
	require.NoError(t, err)
	return s, paths
}

func TestIDSet(t *testing.T) {
	t.Parallel()

	s := store.NewIDSet(3, 1, 3, 2, 1)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{1, 2, 3}, s.Sorted())

	assert.False(t, s.Add(2))
	assert.True(t, s.Add(9))
	assert.True(t, s.Has(9))
	assert.True(t, s.Remove(9))
	assert.False(t, s.Remove(9))
	assert.False(t, s.Has(9))
}

func TestJSONStoreLoadTolerance(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		write   bool
		want    []int64
	}{
		{name: "missing file", write: false, want: []int64{}},
		{name: "corrupt json", write: true, content: "{users: [1,", want: []int64{}},
		{name: "empty file", write: true, content: "", want: []int64{}},
		{name: "key missing", write: true, content: `{"people":[1,2]}`, want: []int64{}},
		{name: "key not a list", write: true, content: `{"users":"1,2"}`, want: []int64{}},
		{name: "non numeric entry", write: true, content: `{"users":[1,"two"]}`, want: []int64{}},
		{name: "null list", write: true, content: `{"users":null}`, want: []int64{}},
		{name: "duplicates", write: true, content: `{"users":[5,5,7,5,7,9]}`, want: []int64{5, 7, 9}},
		{name: "extra keys ignored", write: true, content: `{"users":[1],"note":"x"}`, want: []int64{1}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, paths := newJSONStore(t)
			if tc.write {
				require.NoError(t, os.WriteFile(paths.Users, []byte(tc.content), 0o600))
			}

			ids, err := s.Load(context.Background(), store.Users)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids.Sorted())
		})
	}
}

func TestJSONStoreSaveFormat(t *testing.T) {
	t.Parallel()

	s, paths := newJSONStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.Admins, store.NewIDSet(42, 7)))

	data, err := os.ReadFile(paths.Admins)
	require.NoError(t, err)
	assert.JSONEq(t, `{"admins":[7,42]}`, string(data))

	// Users file is independent of the admins file.
	users, err := s.Load(ctx, store.Users)
	require.NoError(t, err)
	assert.Zero(t, users.Len())

	entries, err := os.ReadDir(filepath.Dir(paths.Admins))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temporary file left behind")
	}
}

func TestJSONStoreNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"duplicates", `{"users":[3,1,3,2]}`, `{"users":[1,2,3]}`},
		{"unsorted without duplicates", `{"users":[3,1,2]}`, `{"users":[1,2,3]}`},
		{"already normalized", `{"users":[1,2,3]}`, `{"users":[1,2,3]}`},
		{"corrupt left for inspection", `not json`, `not json`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, paths := newJSONStore(t)
			require.NoError(t, os.WriteFile(paths.Users, []byte(tt.content), 0o600))

			require.NoError(t, s.Normalize(context.Background(), store.Users))

			data, err := os.ReadFile(paths.Users)
			require.NoError(t, err)
			if json.Valid([]byte(tt.want)) {
				assert.JSONEq(t, tt.want, string(data))
			} else {
				assert.Equal(t, tt.want, string(data))
			}
		})
	}

	s, _ := newJSONStore(t)
	assert.NoError(t, s.Normalize(context.Background(), store.Admins), "missing file is skipped")
	assert.Error(t, s.Normalize(context.Background(), store.Kind("nope")))
}

func TestSQLiteSaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := store.NewSQLiteStore(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Save(ctx, store.Users, store.NewIDSet(1, 2)))

	db, err := store.NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.ExecContext(ctx, `UPDATE records SET created_at = '2020-01-01 00:00:00' WHERE kind = 'users'`)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, store.Users, store.NewIDSet(2, 3)))

	var rows []struct {
		ID        int64  `db:"id"`
		CreatedAt string `db:"created_at"`
	}
	require.NoError(t, db.SelectContext(ctx, &rows, `SELECT id, CAST(created_at AS TEXT) AS created_at FROM records WHERE kind = 'users' ORDER BY id`))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "2020-01-01 00:00:00", rows[0].CreatedAt, "untouched rows keep their timestamp")
	assert.Equal(t, int64(3), rows[1].ID)
	assert.NotEqual(t, "2020-01-01 00:00:00", rows[1].CreatedAt)
}

func TestBackendsRoundTrip(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) store.Store{
		"json": func(t *testing.T) store.Store {
			s, _ := newJSONStore(t)
			return s
		},
		"sqlite": func(t *testing.T) store.Store {
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), discardLogger())
			require.NoError(t, err)
			return s
		},
		"bolt": func(t *testing.T) store.Store {
			s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "records.bolt"), discardLogger())
			require.NoError(t, err)
			return s
		},
		"memory": func(t *testing.T) store.Store {
			return store.NewMemoryStore()
		},
	}

	for name, open := range backends {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })

			empty, err := s.Load(ctx, store.Admins)
			require.NoError(t, err)
			assert.Zero(t, empty.Len())

			require.NoError(t, s.Save(ctx, store.Users, store.NewIDSet(1, 2, 3)))
			require.NoError(t, s.Save(ctx, store.Admins, store.NewIDSet(42)))

			// Save replaces rather than merges.
			require.NoError(t, s.Save(ctx, store.Users, store.NewIDSet(2, 4)))

			users, err := s.Load(ctx, store.Users)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 4}, users.Sorted())

			admins, err := s.Load(ctx, store.Admins)
			require.NoError(t, err)
			assert.Equal(t, []int64{42}, admins.Sorted())

			require.NoError(t, s.Ping(ctx))
			require.NoError(t, s.Normalize(ctx, store.Users))
			require.NoError(t, s.Maintain(ctx))

			users, err = s.Load(ctx, store.Users)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 4}, users.Sorted(), "maintenance keeps records")

			_, err = s.Load(ctx, store.Kind("nope"))
			assert.Error(t, err)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Save(ctx, store.Users, store.NewIDSet(1)))

	ids, err := s.Load(ctx, store.Users)
	require.NoError(t, err)
	ids.Add(2)

	again, err := s.Load(ctx, store.Users)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, again.Sorted())
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	s, err := store.New(config.StorageConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.New(config.StorageConfig{
		Backend:    "json",
		DataDir:    t.TempDir(),
		UsersFile:  "u.json",
		AdminsFile: "a.json",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = store.New(config.StorageConfig{Backend: "redis"}, nil)
	assert.Error(t, err)
}
