package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/model"
	"fieldops/internal/store"
)

func newRepo(t *testing.T) *StoreRepo {
	t.Helper()
	return NewRepo(store.NewMemoryStore())
}

func TestStoreRepo_CreateDefaults(t *testing.T) {
	repo := newRepo(t)

	created, err := repo.Create(context.Background(), model.Task{
		Project: "Substation A",
		Task:    "Overcurrent",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.TaskPending, created.Status)
	assert.Equal(t, model.PriorityPending, created.Priority)
	assert.NotNil(t, created.AssignedTo)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestStoreRepo_UpdatePatchesOnlyGivenFields(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Project: "P", Task: "Distance"})
	require.NoError(t, err)

	done := model.TaskDone
	updated, err := repo.Update(ctx, created.ID, Patch{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, model.TaskDone, updated.Status)
	assert.Equal(t, "Distance", updated.Task)
	assert.Equal(t, created.Priority, updated.Priority)

	_, err = repo.Update(ctx, "task_missing", Patch{Status: &done})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRepo_ListFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Task{Project: "P1", Task: "A", Status: model.TaskDone})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Task{Project: "P1", Task: "B"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Task{Project: "P2", Task: "C"})
	require.NoError(t, err)

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := repo.List(ctx, ListFilter{Status: "done"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "A", done[0].Task)

	p1, err := repo.List(ctx, ListFilter{Project: "P1"})
	require.NoError(t, err)
	assert.Len(t, p1, 2)
}

func TestStoreRepo_ListByProject(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	link := model.LinkedActivity{ProjectID: "proj_1", System: "MV SWGR", Category: "Relay", Subcategory: "Distance"}
	_, err := repo.Create(ctx, model.Task{Project: "P", Task: "Distance", LinkedActivity: link})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Task{Project: "Q", Task: "Other", LinkedActivity: model.LinkedActivity{ProjectID: "proj_2"}})
	require.NoError(t, err)

	got, err := repo.ListByProject(ctx, "proj_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, link, got[0].LinkedActivity)
}

func TestStoreRepo_DeleteMany(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	t1, _ := repo.Create(ctx, model.Task{Task: "A"})
	t2, _ := repo.Create(ctx, model.Task{Task: "B"})
	t3, _ := repo.Create(ctx, model.Task{Task: "C"})

	require.NoError(t, repo.DeleteMany(ctx, []model.TaskID{t1.ID, t3.ID}))

	left, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, t2.ID, left[0].ID)
}
