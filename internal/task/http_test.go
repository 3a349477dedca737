package task

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/model"
	"fieldops/internal/store"
)

func TestHandler_PatchStatusAndAssignees(t *testing.T) {
	repo := NewRepo(store.NewMemoryStore())
	h := NewHandler(repo)

	created, err := repo.Create(context.Background(), model.Task{Project: "P", Task: "Distance"})
	require.NoError(t, err)

	body := bytes.NewBufferString(`{"status":"in_progress","assignedTo":["member_1"],"hours":4.5}`)
	w := httptest.NewRecorder()
	h.Sub(w, httptest.NewRequest("PATCH", "/api/tasks/"+string(created.ID), body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.TaskInProgress, got.Status)
	assert.Equal(t, []string{"member_1"}, got.AssignedTo)
	assert.Equal(t, 4.5, got.Hours)
	// Untouched fields survive the patch.
	assert.Equal(t, "Distance", got.Task)
}

func TestHandler_ListByStatusQuery(t *testing.T) {
	repo := NewRepo(store.NewMemoryStore())
	h := NewHandler(repo)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Task{Project: "P", Task: "a", Status: model.TaskDone})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Task{Project: "P", Task: "b"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Root(w, httptest.NewRequest("GET", "/api/tasks?status=done", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Task)
}

func TestHandler_NotFoundAndBadJSON(t *testing.T) {
	h := NewHandler(NewRepo(store.NewMemoryStore()))

	w := httptest.NewRecorder()
	h.Sub(w, httptest.NewRequest("GET", "/api/tasks/task_missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.Sub(w, httptest.NewRequest("PATCH", "/api/tasks/task_missing", bytes.NewBufferString("{oops")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
