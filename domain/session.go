package domain

import "time"

// Session represents a cached authentication session stored in Redis.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Actor projects the session identity into the shape consumed by
// authorization checks.
func (s *Session) Actor() Actor {
	if s == nil {
		return Actor{}
	}
	return Actor{ID: s.UserID, Email: s.Email, Admin: s.Admin}
}
