package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jasktodo/internal/database"
	"github.com/jask/jasktodo/internal/store"
	"github.com/jask/jasktodo/internal/store/storetest"
)

func setupTaskRepo(t *testing.T) *TaskRepo {
	t.Helper()
	db, err := database.OpenMigrated()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTaskRepo(db)
}

func TestTaskRepoContract(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) store.Backend {
		return setupTaskRepo(t)
	})
}

func TestTaskRepoRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTaskRepo(t)

	require.NoError(t, repo.Append(ctx, store.Task{ID: "b", Text: "second id, first row"}))
	require.NoError(t, repo.Append(ctx, store.Task{ID: "a", Text: "first id, second row"}))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Equal(t, []store.Task{
		{ID: "b", Text: "second id, first row"},
		{ID: "a", Text: "first id, second row"},
	}, all)

	ok, err := repo.Contains(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.Contains(ctx, "zzz")
	require.NoError(t, err)
	require.False(t, ok)

	// same text still counts as a matched row
	ok, err = repo.SetText(ctx, "a", "first id, second row")
	require.NoError(t, err)
	require.True(t, ok)

	require.Error(t, repo.Append(ctx, store.Task{ID: "a", Text: "dup"}))
}

func TestTaskRepoDatabasesAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	one := setupTaskRepo(t)
	two := setupTaskRepo(t)

	require.NoError(t, one.Append(ctx, store.Task{ID: "only-in-one", Text: "x"}))
	all, err := two.All(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
