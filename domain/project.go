package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a container of tasks owned by an admin user. The stored
// totals are a materialized view of its task set; ProjectSummary carries
// the freshly recomputed figures on every read.
type Project struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	AdminID    int64           `json:"admin_id"`
	TotalHours float64         `json:"total_hours"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (p *Project) IsCompleted() bool {
	return p != nil && p.Status == StatusCompleted
}

// ProjectSummary is a project joined with its admin email and the
// aggregates recomputed from the current task set.
type ProjectSummary struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	AdminID         int64           `json:"admin_id"`
	AdminEmail      string          `json:"admin_email"`
	Status          Status          `json:"status"`
	TotalTasks      int             `json:"total_tasks"`
	TotalHours      float64         `json:"total_hours"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	InProgressTasks int             `json:"in_progress_tasks"`
	CompletedTasks  int             `json:"completed_tasks"`
}
