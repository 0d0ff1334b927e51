package usecase

import (
	"context"

	"github.com/taskledger/backend/domain"
)

// ActivityRecorder abstracts the activity journal so use cases stay
// storage-agnostic. Recording is best-effort: a failed append must not
// fail the mutation it describes.
type ActivityRecorder interface {
	Record(ctx context.Context, activity domain.Activity) error
}
