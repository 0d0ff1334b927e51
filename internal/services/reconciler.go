package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/internal/infrastructure/journal"
	"github.com/taskledger/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ReconcilerConfig controls how the background reconciliation runs.
type ReconcilerConfig struct {
	Interval         time.Duration
	JournalRetention time.Duration
}

// Reconciler periodically rewrites the stored project totals from each
// project's task set. The stored totals are a materialized view; the
// reconciler repairs any drift left behind when a post-mutation sync
// failed. It also prunes journal entries past the retention window.
type Reconciler struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	journal  *journal.Store
	monitor  ConnectionHealth
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ReconcilerConfig
}

func NewReconciler(
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	jnl *journal.Store,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg ReconcilerConfig,
) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.JournalRetention <= 0 {
		cfg.JournalRetention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reconciler{
		projects: projects,
		tasks:    tasks,
		journal:  jnl,
		monitor:  monitor,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			r.logger.Error("reconciliation failed", zap.Error(err))
		}
	}); err != nil {
		logger.Error("failed to schedule reconciliation", zap.String("schedule", schedule), zap.Error(err))
	}

	return r
}

// Start launches the cron scheduler.
func (r *Reconciler) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("reconciler started", zap.Duration("interval", r.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (r *Reconciler) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("reconciler stopped")
}

// Run performs one reconciliation pass synchronously.
func (r *Reconciler) Run(ctx context.Context) error {
	if r == nil || r.projects == nil {
		return nil
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping reconciliation (offline)")
		return nil
	}

	ids, err := r.projects.ListIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.reportDrift(ctx, id)
		if err := r.projects.SyncTotals(ctx, id); err != nil {
			r.logger.Warn("project totals sync failed", zap.Int64("project_id", id), zap.Error(err))
		}
	}

	if r.journal != nil {
		if err := r.journal.Cleanup(time.Now().Add(-r.cfg.JournalRetention)); err != nil {
			r.logger.Warn("journal cleanup failed", zap.Error(err))
		}
	}

	return nil
}

// reportDrift recomputes the project aggregates in memory and logs when
// the stored totals disagree with the task set. The subsequent SQL sync
// repairs the row; the log is the signal that a post-mutation sync was
// lost.
func (r *Reconciler) reportDrift(ctx context.Context, id int64) {
	if r.tasks == nil {
		return
	}
	project, err := r.projects.GetByID(ctx, id)
	if err != nil {
		return
	}
	details, err := r.tasks.ListDetails(ctx, repository.TaskFilter{ProjectID: id})
	if err != nil {
		return
	}

	set := make([]domain.Task, 0, len(details))
	for _, d := range details {
		set = append(set, d.Task)
	}
	stats := domain.ComputeProjectStats(set)

	if project.TotalHours != stats.TotalHours || !project.TotalCost.Equal(stats.TotalCost) {
		r.logger.Warn("project totals drift",
			zap.Int64("project_id", id),
			zap.Float64("stored_hours", project.TotalHours),
			zap.Float64("computed_hours", stats.TotalHours),
			zap.String("stored_cost", project.TotalCost.String()),
			zap.String("computed_cost", stats.TotalCost.String()),
		)
	}
}
