package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner repeats the background sync passes on a fixed interval until
// its context is cancelled. Passes are idempotent, so an overlap with
// a user-triggered sync needs no coordination.
type Runner struct {
	Sync     *Synchronizer
	Interval time.Duration
	// Dailies runs the task-to-daily pass each tick.
	Dailies bool
	// Projects additionally re-syncs every project's tasks each tick.
	Projects bool
	Logger   *zap.Logger
}

func (r *Runner) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("sync runner started",
		zap.Duration("interval", interval),
		zap.Bool("dailies", r.Dailies),
		zap.Bool("projects", r.Projects))

	for {
		select {
		case <-ctx.Done():
			logger.Info("sync runner stopped")
			return nil
		case <-ticker.C:
			r.tick(ctx, logger)
		}
	}
}

func (r *Runner) tick(ctx context.Context, logger *zap.Logger) {
	if r.Projects {
		if _, err := r.Sync.SyncAllProjects(ctx); err != nil {
			logger.Warn("background project sync failed", zap.Error(err))
		}
	}
	if r.Dailies {
		if _, err := r.Sync.SyncDailies(ctx); err != nil {
			logger.Warn("background daily sync failed", zap.Error(err))
		}
	}
}
