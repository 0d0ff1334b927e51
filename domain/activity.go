package domain

import "time"

// Activity verbs and entities recorded to the local journal. The feed
// is display-only and best-effort; it is not an audit history.
const (
	ActionRegistered = "registered"
	ActionCreated    = "created"
	ActionCompleted  = "completed"
	ActionDeleted    = "deleted"
	ActionHoursAdded = "hours_added"

	EntityUser    = "user"
	EntityProject = "project"
	EntityTask    = "task"
)

// Activity is a single entry in the recent-activity feed.
type Activity struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	ProjectID int64     `json:"project_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
