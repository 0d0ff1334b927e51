package services

import (
	"context"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/internal/infrastructure/journal"
	"github.com/taskledger/backend/usecase"
)

// ActivityBridge adapts the journal store to the recorder port consumed
// by the use cases.
type ActivityBridge struct {
	store *journal.Store
}

func NewActivityBridge(store *journal.Store) *ActivityBridge {
	return &ActivityBridge{store: store}
}

func (b *ActivityBridge) Record(ctx context.Context, activity domain.Activity) error {
	if b.store == nil {
		return domain.ErrInvalidPayload
	}
	entry := journal.Entry{
		ID:        activity.ID,
		ActorID:   activity.ActorID,
		Action:    activity.Action,
		Entity:    activity.Entity,
		EntityID:  activity.EntityID,
		ProjectID: activity.ProjectID,
		Detail:    activity.Detail,
		Timestamp: activity.Timestamp,
	}
	return b.store.Append(entry)
}

// Recent reads the feed back out as domain activities, newest first.
func (b *ActivityBridge) Recent(limit int) ([]domain.Activity, error) {
	entries, err := b.store.Recent(limit)
	if err != nil {
		return nil, err
	}
	activities := make([]domain.Activity, 0, len(entries))
	for _, e := range entries {
		activities = append(activities, domain.Activity{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			ProjectID: e.ProjectID,
			Detail:    e.Detail,
			Timestamp: e.Timestamp,
		})
	}
	return activities, nil
}

var _ usecase.ActivityRecorder = (*ActivityBridge)(nil)
