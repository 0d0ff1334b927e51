package repository

import (
	"context"

	"github.com/taskledger/backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save persists the session payload with a store TTL derived from
	// ExpiresAt, so the two expiry signals cannot drift apart.
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
