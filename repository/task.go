package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskledger/backend/domain"
)

// TaskFilter narrows task listings. Zero values mean "no filter".
type TaskFilter struct {
	ProjectID  int64
	AssignedTo int64
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	// ListDetails joins each task with its project title, assignee email,
	// completer email and dependency task, newest first. A deleted
	// dependency target yields a nil Dependency, never an error.
	ListDetails(ctx context.Context, filter TaskFilter) ([]domain.TaskDetail, error)
	// AddHours accumulates delta onto hours_worked and rewrites
	// total_cost as rate times the new hours, atomically.
	AddHours(ctx context.Context, id int64, delta float64, rate decimal.Decimal) (*domain.Task, error)
	Complete(ctx context.Context, id int64, completedBy int64, at time.Time) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}
