package domain

// Status enumerates the lifecycle states shared by projects and tasks.
// Completed is terminal: there is no transition out of it.
type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}
