package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/daily"
	"fieldops/internal/model"
	"fieldops/internal/project"
	"fieldops/internal/store"
	"fieldops/internal/task"
)

type fixture struct {
	sync     *Synchronizer
	projects project.Repo
	tasks    task.Repo
	dailies  daily.Repo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	projects := project.NewRepo(s)
	tasks := task.NewRepo(s)
	dailies := daily.NewRepo(s)
	return &fixture{
		sync:     NewSynchronizer(projects, tasks, dailies, nil, nil),
		projects: projects,
		tasks:    tasks,
		dailies:  dailies,
	}
}

func taskKeys(ts []model.Task) map[model.ActivityKey]bool {
	keys := map[model.ActivityKey]bool{}
	for _, t := range ts {
		keys[t.LinkedActivity.Key()] = true
	}
	return keys
}

func TestSyncProject_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.sync.SyncProject(context.Background(), "proj_missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSyncProject_CreatesTasksFromGroups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, model.Project{
		Name: "Substation North",
		Team: []string{"member_1", "member_2"},
		Activities: []model.Activity{
			act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
			act("MV SWGR", "Overcurrent", "Overcurrent", "Timing"),
			act("MV SWGR", "Relay", "Distance", "Impedance"),
		},
	})
	require.NoError(t, err)

	res, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Deleted: 0}, res)

	ts, err := f.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, ts, 2)

	names := map[string]model.Task{}
	for _, tk := range ts {
		names[tk.Task] = tk
	}
	require.Contains(t, names, "Overcurrent")
	require.Contains(t, names, "Distance")

	oc := names["Overcurrent"]
	assert.Equal(t, "Substation North", oc.Project)
	assert.Equal(t, "MV SWGR / Overcurrent", oc.Desc)
	assert.ElementsMatch(t, []string{"Pickup", "Timing"}, oc.Activities)
	assert.Equal(t, model.TaskPending, oc.Status)
	assert.Equal(t, model.PriorityPending, oc.Priority)
	assert.Equal(t, []string{"member_1", "member_2"}, oc.AssignedTo)
	assert.Equal(t, p.ID, oc.LinkedActivity.ProjectID)
}

func TestSyncProject_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, model.Project{
		Name: "P",
		Activities: []model.Activity{
			act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
			act("MV SWGR", "Relay", "Distance", "Impedance"),
		},
	})
	require.NoError(t, err)

	first, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Deleted: 0}, second)
}

func TestSyncProject_ConvergesAfterActivityChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, model.Project{
		Name: "P",
		Activities: []model.Activity{
			act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
			act("MV SWGR", "Overcurrent", "Overcurrent", "Timing"),
			act("MV SWGR", "Relay", "Distance", "Impedance"),
		},
	})
	require.NoError(t, err)

	_, err = f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)

	// Drop the Overcurrent group, keep Distance.
	remaining := []model.Activity{act("MV SWGR", "Relay", "Distance", "Impedance")}
	_, err = f.projects.Update(ctx, p.ID, project.Patch{Activities: &remaining})
	require.NoError(t, err)

	res, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Deleted: 1}, res)

	ts, err := f.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "Distance", ts[0].Task)

	// Task keys now equal the grouped activity keys exactly.
	groups := GroupActivities(remaining)
	wantKeys := map[model.ActivityKey]bool{}
	for _, g := range groups {
		wantKeys[g.Key] = true
	}
	assert.Equal(t, wantKeys, taskKeys(ts))
}

func TestSyncProject_PreservesUserEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, model.Project{
		Name:       "P",
		Activities: []model.Activity{act("MV SWGR", "Relay", "Distance", "Impedance")},
	})
	require.NoError(t, err)

	_, err = f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)

	ts, err := f.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, ts, 1)

	done := model.TaskDone
	high := model.PriorityHigh
	edited, err := f.tasks.Update(ctx, ts[0].ID, task.Patch{Status: &done, Priority: &high})
	require.NoError(t, err)

	res, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	after, err := f.tasks.Get(ctx, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, after.Status)
	assert.Equal(t, model.PriorityHigh, after.Priority)
}

func TestSyncProject_EmptyActivitiesDeletesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.Create(ctx, model.Project{
		Name: "P",
		Activities: []model.Activity{
			act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
			act("MV SWGR", "Relay", "Distance", "Impedance"),
		},
	})
	require.NoError(t, err)

	_, err = f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)

	empty := []model.Activity{}
	_, err = f.projects.Update(ctx, p.ID, project.Patch{Activities: &empty})
	require.NoError(t, err)

	res, err := f.sync.SyncProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 0, Deleted: 2}, res)

	ts, err := f.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestSyncProject_DoesNotTouchOtherProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1, err := f.projects.Create(ctx, model.Project{
		Name:       "P1",
		Activities: []model.Activity{act("MV SWGR", "Relay", "Distance", "Impedance")},
	})
	require.NoError(t, err)
	p2, err := f.projects.Create(ctx, model.Project{
		Name:       "P2",
		Activities: []model.Activity{act("MV SWGR", "Relay", "Distance", "Impedance")},
	})
	require.NoError(t, err)

	_, err = f.sync.SyncProject(ctx, p1.ID)
	require.NoError(t, err)
	_, err = f.sync.SyncProject(ctx, p2.ID)
	require.NoError(t, err)

	empty := []model.Activity{}
	_, err = f.projects.Update(ctx, p1.ID, project.Patch{Activities: &empty})
	require.NoError(t, err)
	_, err = f.sync.SyncProject(ctx, p1.ID)
	require.NoError(t, err)

	ts, err := f.tasks.ListByProject(ctx, p2.ID)
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestSyncAllProjects_AggregatesAndContinuesOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, model.Project{
		Name:       "Good",
		Activities: []model.Activity{act("MV SWGR", "Relay", "Distance", "Impedance")},
	})
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, model.Project{Name: "Empty"})
	require.NoError(t, err)

	results, err := f.sync.SyncAllProjects(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Empty(t, r.Error)
	}
}

func TestSyncDailies_CreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, model.Task{
		Project:  "P",
		Task:     "Distance",
		Status:   model.TaskInProgress,
		Priority: model.PriorityHigh,
		Hours:    3.5,
	})
	require.NoError(t, err)

	results, err := f.sync.SyncDailies(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "created", results[0].Action)

	today := time.Now().Format("2006-01-02")
	report, err := f.dailies.FindForTaskOnDate(ctx, created.ID, today)
	require.NoError(t, err)
	assert.Equal(t, model.DailyInProgress, report.Status)
	assert.Equal(t, model.PriorityHigh, report.Priority)
	assert.Equal(t, 50, report.Progress)
	assert.Equal(t, 3.5, report.Hours)

	// Finish the task; the same day's report is updated in place.
	done := model.TaskDone
	_, err = f.tasks.Update(ctx, created.ID, task.Patch{Status: &done})
	require.NoError(t, err)

	results, err = f.sync.SyncDailies(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated", results[0].Action)

	reports, err := f.dailies.List(ctx, daily.ListFilter{TaskID: string(created.ID)})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, model.DailyCompleted, reports[0].Status)
	assert.Equal(t, 100, reports[0].Progress)
}

func TestSyncDailies_SkipsStaleTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tasks.Create(ctx, model.Task{Project: "P", Task: "Old"})
	require.NoError(t, err)

	// Pretend the pass runs two days from now: the task is stale.
	f.sync.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	results, err := f.sync.SyncDailies(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSyncDailies_StatusAndPriorityMapping(t *testing.T) {
	tests := []struct {
		status       model.TaskStatus
		priority     model.TaskPriority
		wantStatus   model.DailyStatus
		wantPriority model.TaskPriority
		wantProgress int
	}{
		{model.TaskDone, model.PriorityHigh, model.DailyCompleted, model.PriorityHigh, 100},
		{model.TaskStuck, model.PriorityMedium, model.DailyStuck, model.PriorityMedium, 25},
		{model.TaskInProgress, model.PriorityLow, model.DailyInProgress, model.PriorityLow, 50},
		{model.TaskStatus("weird"), model.TaskPriority("urgent"), model.DailyPending, model.PriorityPending, 0},
	}

	for _, tc := range tests {
		t.Run(string(tc.status)+"/"+string(tc.priority), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			created, err := f.tasks.Create(ctx, model.Task{
				Project: "P", Task: "T", Status: tc.status, Priority: tc.priority,
			})
			require.NoError(t, err)

			_, err = f.sync.SyncDailies(ctx)
			require.NoError(t, err)

			report, err := f.dailies.FindForTaskOnDate(ctx, created.ID, time.Now().Format("2006-01-02"))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, report.Status)
			assert.Equal(t, tc.wantPriority, report.Priority)
			assert.Equal(t, tc.wantProgress, report.Progress)
		})
	}
}
