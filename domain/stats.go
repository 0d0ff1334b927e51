package domain

import "github.com/shopspring/decimal"

// ProjectStats are the per-project aggregates derived from its task set.
type ProjectStats struct {
	TotalTasks      int             `json:"total_tasks"`
	TotalHours      float64         `json:"total_hours"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	InProgressTasks int             `json:"in_progress_tasks"`
	CompletedTasks  int             `json:"completed_tasks"`
}

// ComputeProjectStats recomputes project aggregates from the given task
// set. It is a pure function of its input: the stored project totals are
// a materialized view, and this is the single source of how they are
// derived.
func ComputeProjectStats(tasks []Task) ProjectStats {
	stats := ProjectStats{TotalCost: decimal.Zero}
	for _, t := range tasks {
		stats.TotalTasks++
		stats.TotalHours += t.HoursWorked
		stats.TotalCost = stats.TotalCost.Add(t.TotalCost)
		if t.Status == StatusCompleted {
			stats.CompletedTasks++
		} else {
			stats.InProgressTasks++
		}
	}
	return stats
}
