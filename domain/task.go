package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task is a unit of billable work within a project, assignable to a
// user and optionally dependent on another task in the same project.
type Task struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	ProjectID        int64           `json:"project_id"`
	DependencyTaskID *int64          `json:"dependency_task_id,omitempty"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	CreatedByUserID  int64           `json:"created_by_user_id"`
	AssignedToUserID int64           `json:"assigned_to_user_id"`
	CompletedBy      *int64          `json:"completed_by_user_id,omitempty"`
	CompletedAt      *time.Time      `json:"completed_date_time,omitempty"`
	Status           Status          `json:"status"`
	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	HoursWorked      float64         `json:"hours_worked"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// Cost derives the task cost from an hourly rate and accumulated hours.
// The stored total_cost column is always recomputed through this, never
// adjusted incrementally.
func Cost(rate decimal.Decimal, hours float64) decimal.Decimal {
	return rate.Mul(decimal.NewFromFloat(hours)).Round(2)
}

// TaskRef is the slice of a dependency task surfaced on a TaskDetail.
type TaskRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// TaskDetail is a task joined with its project title, assignee email,
// completer email and, when present and still existing, its dependency
// task. Dependency is nil when the target was deleted; the stored
// DependencyTaskID survives regardless.
type TaskDetail struct {
	Task
	ProjectTitle     string   `json:"project_title"`
	AssigneeEmail    string   `json:"assignee_email"`
	CompletedByEmail *string  `json:"completed_by_email,omitempty"`
	Dependency       *TaskRef `json:"dependency,omitempty"`
}
