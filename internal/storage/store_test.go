package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db", "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	started := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	run := &Run{ID: "run-1", Report: "ventas", DateMode: 2, DateInput: "3/2024", StartedAt: started}
	require.NoError(t, store.Create(ctx, run))
	assert.Equal(t, StatusRunning, run.Status)

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "ventas", got.Report)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.True(t, started.Equal(got.StartedAt))

	run.Location = "Lima"
	run.RowsIn, run.RowsOut = 120, 40
	run.Charts, run.EmptyCharts = 3, 1
	run.Status = StatusSuccess
	require.NoError(t, store.Finish(ctx, run))

	got, err = store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, 40, got.RowsOut)
	assert.Equal(t, 1, got.EmptyCharts)
	assert.Equal(t, "Lima", got.Location)
	require.NotNil(t, got.FinishedAt)
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, &Run{ID: id, Report: "ventas", DateMode: 1, StartedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = store.Finish(ctx, &Run{ID: "missing", Status: StatusFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
