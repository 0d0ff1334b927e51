package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
)

// MockProjectRepository is a mock implementation of ProjectRepository.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) ListSummaries(ctx context.Context, filter repository.ProjectFilter) ([]domain.ProjectSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProjectSummary), args.Error(1)
}

func (m *MockProjectRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockProjectRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockProjectRepository) SyncTotals(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ListDetails(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskDetail, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaskDetail), args.Error(1)
}

func (m *MockTaskRepository) AddHours(ctx context.Context, id int64, delta float64, rate decimal.Decimal) (*domain.Task, error) {
	args := m.Called(ctx, id, delta, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Complete(ctx context.Context, id int64, completedBy int64, at time.Time) (*domain.Task, error) {
	args := m.Called(ctx, id, completedBy, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type staticHealth struct {
	online bool
}

func (s staticHealth) IsOnline() bool { return s.online }

func TestReconcilerRunSyncsEveryProject(t *testing.T) {
	mockProjects := new(MockProjectRepository)
	mockTasks := new(MockTaskRepository)

	// Project 1 has drifted stored totals; project 2 is in sync.
	mockProjects.On("ListIDs", mock.Anything).Return([]int64{1, 2}, nil)
	mockProjects.On("GetByID", mock.Anything, int64(1)).Return(&domain.Project{
		ID:         1,
		TotalHours: 0,
		TotalCost:  decimal.Zero,
	}, nil)
	mockProjects.On("GetByID", mock.Anything, int64(2)).Return(&domain.Project{
		ID:         2,
		TotalHours: 3,
		TotalCost:  decimal.NewFromInt(150),
	}, nil)
	mockTasks.On("ListDetails", mock.Anything, repository.TaskFilter{ProjectID: int64(1)}).Return([]domain.TaskDetail{
		{Task: domain.Task{ID: 10, HoursWorked: 3, TotalCost: decimal.NewFromInt(150)}},
	}, nil)
	mockTasks.On("ListDetails", mock.Anything, repository.TaskFilter{ProjectID: int64(2)}).Return([]domain.TaskDetail{
		{Task: domain.Task{ID: 11, HoursWorked: 3, TotalCost: decimal.NewFromInt(150)}},
	}, nil)
	mockProjects.On("SyncTotals", mock.Anything, int64(1)).Return(nil)
	mockProjects.On("SyncTotals", mock.Anything, int64(2)).Return(nil)

	r := NewReconciler(mockProjects, mockTasks, nil, staticHealth{online: true}, nil, ReconcilerConfig{
		Interval:         time.Minute,
		JournalRetention: time.Hour,
	})

	err := r.Run(context.Background())

	assert.NoError(t, err)
	mockProjects.AssertExpectations(t)
	mockTasks.AssertExpectations(t)
}

func TestReconcilerRunSkipsWhileOffline(t *testing.T) {
	mockProjects := new(MockProjectRepository)

	r := NewReconciler(mockProjects, new(MockTaskRepository), nil, staticHealth{online: false}, nil, ReconcilerConfig{
		Interval:         time.Minute,
		JournalRetention: time.Hour,
	})

	err := r.Run(context.Background())

	assert.NoError(t, err)
	mockProjects.AssertNotCalled(t, "ListIDs", mock.Anything)
	mockProjects.AssertNotCalled(t, "SyncTotals", mock.Anything, mock.Anything)
}

func TestReconcilerSyncFailureDoesNotAbortTheSweep(t *testing.T) {
	mockProjects := new(MockProjectRepository)
	mockTasks := new(MockTaskRepository)

	mockProjects.On("ListIDs", mock.Anything).Return([]int64{1, 2}, nil)
	mockProjects.On("GetByID", mock.Anything, mock.Anything).Return(&domain.Project{TotalCost: decimal.Zero}, nil)
	mockTasks.On("ListDetails", mock.Anything, mock.Anything).Return([]domain.TaskDetail{}, nil)
	mockProjects.On("SyncTotals", mock.Anything, int64(1)).Return(domain.NewError(domain.ErrCodeInternal, "db down"))
	mockProjects.On("SyncTotals", mock.Anything, int64(2)).Return(nil)

	r := NewReconciler(mockProjects, mockTasks, nil, nil, nil, ReconcilerConfig{
		Interval:         time.Minute,
		JournalRetention: time.Hour,
	})

	err := r.Run(context.Background())

	assert.NoError(t, err)
	mockProjects.AssertExpectations(t)
}
