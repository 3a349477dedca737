// Package sync derives tasks from project activity selections and
// keeps the task and daily-report collections converged on them. Every
// pass computes the desired state, diffs it against what is stored and
// applies the minimal delta, so passes are idempotent and safe to
// retry or overlap.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fieldops/internal/daily"
	"fieldops/internal/metrics"
	"fieldops/internal/model"
	"fieldops/internal/project"
	"fieldops/internal/task"
)

var ErrProjectNotFound = errors.New("project not found")

type Synchronizer struct {
	projects project.Repo
	tasks    task.Repo
	dailies  daily.Repo
	logger   *zap.Logger
	metrics  *metrics.Metrics

	// now is swappable for tests.
	now func() time.Time
}

func NewSynchronizer(projects project.Repo, tasks task.Repo, dailies daily.Repo, logger *zap.Logger, m *metrics.Metrics) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		projects: projects,
		tasks:    tasks,
		dailies:  dailies,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Result reports what one project sync changed.
type Result struct {
	Created int `json:"created"`
	Deleted int `json:"deleted"`
}

// SyncProject reconciles the tasks linked to a project against the
// groups derived from its current activity list: stale tasks are
// deleted in bulk, missing groups get a fresh pending task, and tasks
// whose group is still desired are left exactly as they are, so user
// edits to status, priority and assignees survive.
func (s *Synchronizer) SyncProject(ctx context.Context, id model.ProjectID) (Result, error) {
	p, err := s.projects.Get(ctx, id)
	if errors.Is(err, project.ErrNotFound) {
		return Result{}, ErrProjectNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("load project: %w", err)
	}

	desired := GroupActivities(p.Activities)
	desiredByKey := make(map[model.ActivityKey]TaskGroup, len(desired))
	for _, g := range desired {
		desiredByKey[g.Key] = g
	}

	existing, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("list linked tasks: %w", err)
	}

	var stale []model.TaskID
	represented := map[model.ActivityKey]bool{}
	for _, t := range existing {
		key := t.LinkedActivity.Key()
		if _, ok := desiredByKey[key]; !ok {
			stale = append(stale, t.ID)
			continue
		}
		represented[key] = true
	}

	res := Result{}
	if len(stale) > 0 {
		if err := s.tasks.DeleteMany(ctx, stale); err != nil {
			return res, fmt.Errorf("delete stale tasks: %w", err)
		}
		res.Deleted = len(stale)
	}

	for _, g := range desired {
		if represented[g.Key] {
			continue
		}
		_, err := s.tasks.Create(ctx, model.Task{
			Project:    p.Name,
			Task:       g.Key.Subcategory,
			Desc:       taskDesc(g.Key),
			Activities: g.Activities,
			LinkedActivity: model.LinkedActivity{
				ProjectID:   p.ID,
				System:      g.Key.System,
				Category:    g.Key.Category,
				Subcategory: g.Key.Subcategory,
			},
			Status:     model.TaskPending,
			Priority:   model.PriorityPending,
			AssignedTo: p.Team,
		})
		if err != nil {
			// Deletions already committed stay committed; the caller
			// can retry the whole sync because creation only happens
			// for unrepresented groups.
			return res, fmt.Errorf("create task for %s/%s/%s: %w",
				g.Key.System, g.Key.Category, g.Key.Subcategory, err)
		}
		res.Created++
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Add(float64(res.Created))
		s.metrics.TasksDeleted.Add(float64(res.Deleted))
	}
	s.logger.Info("project synchronized",
		zap.String("project_id", string(id)),
		zap.Int("created", res.Created),
		zap.Int("deleted", res.Deleted))
	return res, nil
}

func taskDesc(key model.ActivityKey) string {
	return key.System + " / " + key.Category
}

// ProjectResult is one entry of a sync-all pass.
type ProjectResult struct {
	ProjectID model.ProjectID `json:"projectId"`
	Project   string          `json:"project"`
	Created   int             `json:"created"`
	Deleted   int             `json:"deleted"`
	Error     string          `json:"error,omitempty"`
}

// SyncAllProjects runs SyncProject for every project. Individual
// failures are recorded per project and do not abort the pass.
func (s *Synchronizer) SyncAllProjects(ctx context.Context) ([]ProjectResult, error) {
	ps, err := s.projects.List(ctx)
	if err != nil {
		s.countRun("projects", false)
		return nil, fmt.Errorf("list projects: %w", err)
	}

	results := make([]ProjectResult, 0, len(ps))
	failed := false
	for _, p := range ps {
		r := ProjectResult{ProjectID: p.ID, Project: p.Name}
		res, err := s.SyncProject(ctx, p.ID)
		if err != nil {
			r.Error = err.Error()
			failed = true
		}
		r.Created = res.Created
		r.Deleted = res.Deleted
		results = append(results, r)
	}
	s.countRun("projects", !failed)
	return results, nil
}

// DailyResult is one entry of a task-to-daily pass.
type DailyResult struct {
	TaskID  model.TaskID  `json:"taskId"`
	DailyID model.DailyID `json:"dailyId"`
	Action  string        `json:"action"` // created | updated
	Error   string        `json:"error,omitempty"`
}

// SyncDailies walks the tasks updated within the last 24 hours and
// creates or updates today's daily report for each, carrying over the
// mapped status, priority, hours and completion percentage. At most
// one report exists per task per calendar day.
func (s *Synchronizer) SyncDailies(ctx context.Context) ([]DailyResult, error) {
	now := s.now()
	cutoff := now.Add(-24 * time.Hour)
	today := now.Format("2006-01-02")

	tasks, err := s.tasks.List(ctx, task.ListFilter{})
	if err != nil {
		s.countRun("dailies", false)
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var results []DailyResult
	failed := false
	for _, t := range tasks {
		if t.UpdatedAt.Before(cutoff) {
			continue
		}
		r := DailyResult{TaskID: t.ID}

		existing, err := s.dailies.FindForTaskOnDate(ctx, t.ID, today)
		switch {
		case err == nil:
			updated, err := s.dailies.Update(ctx, existing.ID, daily.Patch{
				Status:   ptr(model.DailyStatusFor(t.Status)),
				Priority: ptr(model.DailyPriorityFor(t.Priority)),
				Hours:    ptr(t.Hours),
				Progress: ptr(model.ProgressFor(t.Status)),
			})
			if err != nil {
				r.Error = err.Error()
				failed = true
				break
			}
			r.DailyID = updated.ID
			r.Action = "updated"
			if s.metrics != nil {
				s.metrics.DailiesUpdated.Inc()
			}

		case errors.Is(err, daily.ErrNotFound):
			created, err := s.dailies.Create(ctx, model.DailyReport{
				TaskID:   t.ID,
				Project:  t.Project,
				Task:     t.Task,
				Date:     today,
				Status:   model.DailyStatusFor(t.Status),
				Priority: model.DailyPriorityFor(t.Priority),
				Hours:    t.Hours,
				Progress: model.ProgressFor(t.Status),
			})
			if err != nil {
				r.Error = err.Error()
				failed = true
				break
			}
			r.DailyID = created.ID
			r.Action = "created"
			if s.metrics != nil {
				s.metrics.DailiesCreated.Inc()
			}

		default:
			r.Error = err.Error()
			failed = true
		}

		results = append(results, r)
	}
	s.countRun("dailies", !failed)
	return results, nil
}

func (s *Synchronizer) countRun(kind string, ok bool) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	s.metrics.SyncRuns.WithLabelValues(kind, outcome).Inc()
}

func ptr[T any](v T) *T { return &v }
