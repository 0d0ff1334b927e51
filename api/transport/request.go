package transport

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type ProjectCreateRequest struct {
	Title string `json:"title"`
}

type TaskCreateRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	ProjectID        int64           `json:"project_id"`
	DependencyTaskID *int64          `json:"dependency_task_id,omitempty"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	AssignedTo       int64           `json:"assigned_to"`
}

type AddHoursRequest struct {
	Hours float64 `json:"hours"`
}
