package repository

import (
	"context"

	"github.com/taskledger/backend/domain"
)

// ProjectFilter narrows project listings. Zero values mean "no filter".
type ProjectFilter struct {
	AdminID       int64
	ExcludeStatus domain.Status
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	// ListSummaries joins each project with its admin email and the task
	// aggregates recomputed from the current task set, newest first.
	ListSummaries(ctx context.Context, filter ProjectFilter) ([]domain.ProjectSummary, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	// SyncTotals rewrites the stored project totals from its task set in
	// a single transaction.
	SyncTotals(ctx context.Context, id int64) error
}
