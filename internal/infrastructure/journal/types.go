package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a persisted activity record. Entries are keyed by timestamp
// so the feed reads newest first and age-based cleanup stays a prefix
// scan.
type Entry struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	ProjectID int64     `json:"project_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
