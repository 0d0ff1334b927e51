package domain

import "time"

// Roles assignable to a user account.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents an authenticated identity in the platform.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the authenticated identity attempting a mutation, carried by
// the session context and consumed read-only by authorization checks.
type Actor struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}
