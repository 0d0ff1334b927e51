package task

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
	"github.com/taskledger/backend/usecase"
)

// maxDependencyDepth bounds the chain walk so a corrupted store cannot
// send validation into an endless loop.
const maxDependencyDepth = 64

// UseCase is the task lifecycle engine. It owns the In Progress →
// Completed state machine, the dependency constraints, the hours/cost
// derivation and the authorization of every task mutation.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	activity usecase.ActivityRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		users:    users,
		activity: activity,
		logger:   logger,
	}
}

// CreateInput carries the fields required to open a task.
type CreateInput struct {
	Title            string
	Description      string
	ProjectID        int64
	DependencyTaskID *int64
	StartDate        time.Time
	EndDate          time.Time
	HourlyRate       decimal.Decimal
	AssignedTo       int64
}

// CanMutate reports whether the actor may mutate the task and, when
// not, the reason. Allowed: the assignee, the task creator, the owning
// project's admin, or a platform admin.
func CanMutate(task *domain.Task, project *domain.Project, actor domain.Actor) (bool, string) {
	switch {
	case task == nil:
		return false, "task missing"
	case actor.ID != 0 && actor.ID == task.AssignedToUserID:
		return true, ""
	case actor.ID != 0 && actor.ID == task.CreatedByUserID:
		return true, ""
	case project != nil && actor.ID == project.AdminID:
		return true, ""
	case actor.Admin:
		return true, ""
	}
	return false, "actor is neither the assignee nor a project admin"
}

func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskDetail, error) {
	return uc.tasks.ListDetails(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// Create validates the input, resolves the referenced project, assignee
// and dependency, and opens the task as In Progress with zero hours.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Task, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := uc.projects.GetByID(ctx, in.ProjectID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeInvalidRef, "project does not exist")
		}
		return nil, err
	}
	if _, err := uc.users.GetByID(ctx, in.AssignedTo); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.NewError(domain.ErrCodeInvalidRef, "assignee does not exist")
		}
		return nil, err
	}
	if in.DependencyTaskID != nil {
		if err := uc.validateDependency(ctx, in.ProjectID, 0, *in.DependencyTaskID); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		ProjectID:        in.ProjectID,
		DependencyTaskID: in.DependencyTaskID,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		CreatedByUserID:  actor.ID,
		AssignedToUserID: in.AssignedTo,
		Status:           domain.StatusInProgress,
		HourlyRate:       in.HourlyRate,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.record(ctx, actor, domain.ActionCreated, created, created.Title)
	uc.syncProject(ctx, created.ProjectID)
	return created, nil
}

// AddHours accumulates worked hours onto an in-progress task. The delta
// is additive; the cost is recomputed from the task's rate and the new
// total, never adjusted incrementally.
func (uc *UseCase) AddHours(ctx context.Context, actor domain.Actor, taskID int64, delta float64) (*domain.Task, error) {
	if delta <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "hours delta must be positive")
	}

	target, err := uc.authorize(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if target.IsCompleted() {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already completed")
	}

	updated, err := uc.tasks.AddHours(ctx, taskID, delta, target.HourlyRate)
	if err != nil {
		return nil, err
	}

	uc.record(ctx, actor, domain.ActionHoursAdded, updated, updated.Title)
	uc.syncProject(ctx, updated.ProjectID)
	return updated, nil
}

// Complete transitions the task to its terminal state, stamping the
// completing user and time. The dependency state is deliberately not
// consulted: a dependency is informational only.
func (uc *UseCase) Complete(ctx context.Context, actor domain.Actor, taskID int64) (*domain.Task, error) {
	target, err := uc.authorize(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if target.IsCompleted() {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already completed")
	}

	completed, err := uc.tasks.Complete(ctx, taskID, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uc.record(ctx, actor, domain.ActionCompleted, completed, completed.Title)
	uc.syncProject(ctx, completed.ProjectID)
	return completed, nil
}

// Delete removes the task row. Dependents keep their stored dependency
// id and render without dependency info afterwards. Completed tasks are
// immutable, deletion included.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, taskID int64) error {
	target, err := uc.authorize(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if target.IsCompleted() {
		return domain.NewError(domain.ErrCodeForbidden, "completed tasks cannot be deleted")
	}

	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	uc.record(ctx, actor, domain.ActionDeleted, target, target.Title)
	uc.syncProject(ctx, target.ProjectID)
	return nil
}

// authorize loads the task and its project and applies CanMutate.
func (uc *UseCase) authorize(ctx context.Context, actor domain.Actor, taskID int64) (*domain.Task, error) {
	target, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	project, err := uc.projects.GetByID(ctx, target.ProjectID)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	if allowed, reason := CanMutate(target, project, actor); !allowed {
		return nil, domain.NewError(domain.ErrCodeForbidden, reason)
	}
	return target, nil
}

// validateDependency checks that the prospective dependency exists,
// lives in the same project and that following its chain never reaches
// selfID. selfID is zero at creation time, when the task cannot yet be
// depended upon; the guard matters once dependencies become editable.
func (uc *UseCase) validateDependency(ctx context.Context, projectID, selfID, depID int64) error {
	seen := make(map[int64]bool)
	current := depID

	for depth := 0; current != 0; depth++ {
		if depth >= maxDependencyDepth {
			return domain.NewError(domain.ErrCodeInvalidRef, "dependency chain too deep")
		}
		if selfID != 0 && current == selfID {
			return domain.NewError(domain.ErrCodeInvalidRef, "dependency would create a cycle")
		}
		if seen[current] {
			return domain.NewError(domain.ErrCodeInvalidRef, "dependency would create a cycle")
		}
		seen[current] = true

		dep, err := uc.tasks.GetByID(ctx, current)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				if current == depID {
					return domain.NewError(domain.ErrCodeInvalidRef, "dependency task does not exist")
				}
				// A broken link further down the chain is tolerated,
				// mirroring how listings render deleted dependencies.
				return nil
			}
			return err
		}
		if dep.ProjectID != projectID {
			return domain.NewError(domain.ErrCodeInvalidRef, "dependency must belong to the same project")
		}
		if dep.DependencyTaskID == nil {
			return nil
		}
		current = *dep.DependencyTaskID
	}
	return nil
}

func validateInput(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.NewError(domain.ErrCodeInvalid, "title is required")
	case strings.TrimSpace(in.Description) == "":
		return domain.NewError(domain.ErrCodeInvalid, "description is required")
	case in.ProjectID == 0:
		return domain.NewError(domain.ErrCodeInvalid, "project is required")
	case in.StartDate.IsZero():
		return domain.NewError(domain.ErrCodeInvalid, "start date is required")
	case in.EndDate.IsZero():
		return domain.NewError(domain.ErrCodeInvalid, "end date is required")
	case in.EndDate.Before(in.StartDate):
		return domain.NewError(domain.ErrCodeInvalid, "end date precedes start date")
	case in.HourlyRate.IsNegative():
		return domain.NewError(domain.ErrCodeInvalid, "hourly rate must not be negative")
	case in.AssignedTo == 0:
		return domain.NewError(domain.ErrCodeInvalid, "assignee is required")
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, actor domain.Actor, action string, t *domain.Task, detail string) {
	if uc.activity == nil || t == nil {
		return
	}
	entry := domain.Activity{
		ActorID:   actor.ID,
		Action:    action,
		Entity:    domain.EntityTask,
		EntityID:  t.ID,
		ProjectID: t.ProjectID,
		Detail:    detail,
	}
	if err := uc.activity.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record task activity", zap.String("action", action), zap.Error(err))
	}
}

// syncProject refreshes the project's stored totals after a task
// mutation. Listings aggregate from tasks directly, so a failed sync is
// logged and repaired by the reconciler rather than failing the caller.
func (uc *UseCase) syncProject(ctx context.Context, projectID int64) {
	if err := uc.projects.SyncTotals(ctx, projectID); err != nil {
		uc.logger.Warn("failed to sync project totals", zap.Int64("project_id", projectID), zap.Error(err))
	}
}
