package project

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
	"github.com/taskledger/backend/usecase"
)

// UseCase is the project aggregation engine: creation, the status
// transition and the per-project roll-up views.
type UseCase struct {
	projects repository.ProjectRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, activity usecase.ActivityRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		activity: activity,
		logger:   logger,
	}
}

// Create opens a project owned by the actor, In Progress with zero
// totals. A title that trims to empty is rejected.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, title string) (*domain.Project, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}

	created, err := uc.projects.Create(ctx, &domain.Project{
		Title:   trimmed,
		AdminID: actor.ID,
	})
	if err != nil {
		return nil, err
	}

	uc.record(ctx, actor, domain.ActionCreated, created)
	return created, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return uc.projects.GetByID(ctx, id)
}

// List returns project summaries with aggregates recomputed from the
// current task set, newest first.
func (uc *UseCase) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.ProjectSummary, error) {
	return uc.projects.ListSummaries(ctx, filter)
}

// Complete transitions the project to its terminal state. Only the
// project admin (or a platform admin) may do so.
func (uc *UseCase) Complete(ctx context.Context, actor domain.Actor, id int64) (*domain.Project, error) {
	target, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != target.AdminID && !actor.Admin {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only the project admin may complete a project")
	}
	if target.IsCompleted() {
		return nil, domain.NewError(domain.ErrCodeConflict, "project already completed")
	}

	if err := uc.projects.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		return nil, err
	}
	target.Status = domain.StatusCompleted

	uc.record(ctx, actor, domain.ActionCompleted, target)
	return target, nil
}

func (uc *UseCase) record(ctx context.Context, actor domain.Actor, action string, p *domain.Project) {
	if uc.activity == nil || p == nil {
		return
	}
	entry := domain.Activity{
		ActorID:   actor.ID,
		Action:    action,
		Entity:    domain.EntityProject,
		EntityID:  p.ID,
		ProjectID: p.ID,
		Detail:    p.Title,
	}
	if err := uc.activity.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record project activity", zap.String("action", action), zap.Error(err))
	}
}
