package requestRepo

import (
	"context"
	"errors"
	"time"

	"charterhub/models"
)

// ErrNotFound is returned when no record matches the given id.
var ErrNotFound = errors.New("charter request not found")

// CharterRequestRepository persists charter request records. Records are
// never hard-deleted; terminal statuses are soft end-states.
type CharterRequestRepository interface {
	Create(ctx context.Context, record *models.CharterRequestRecord) error
	GetByID(ctx context.Context, id string) (*models.CharterRequestRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.CharterRequestRecord, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.CharterRequestRecord, error)
	UpdateStatus(ctx context.Context, id string, to models.RequestStatus) error
	// TransitionIf atomically sets the status to "to" if and only if the
	// record currently has status "from". It reports whether the update won.
	TransitionIf(ctx context.Context, id string, from, to models.RequestStatus) (bool, error)
	SetQuoteDeadline(ctx context.Context, id string, deadline time.Time) error
	// MarkDeadlineNotified flips the deadline-notified flag exactly once;
	// it reports whether this call was the one that flipped it.
	MarkDeadlineNotified(ctx context.Context, id string) (bool, error)
}
