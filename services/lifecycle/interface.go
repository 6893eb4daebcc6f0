package lifecycle

import (
	"context"
	"time"

	"charterhub/models"
)

// Service owns the persisted request's status machine and enforces its
// preconditions. All status writes go through it.
type Service interface {
	// CreateDraft persists a finished request from the dialogue engine.
	// It is idempotent per session: a second call for the same session
	// returns the existing record.
	CreateDraft(ctx context.Context, record *models.CharterRequestRecord) (*models.CharterRequestRecord, error)

	// Get returns a record, lazily observing a passed quote deadline.
	Get(ctx context.Context, id string) (*models.CharterRequestRecord, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.CharterRequestRecord, error)

	BeginReview(ctx context.Context, id string) error
	// Publish opens the request for bids. Both locations must carry
	// coordinates; a nil deadline falls back to the configured window.
	Publish(ctx context.Context, id string, deadline *time.Time) error
	Withdraw(ctx context.Context, id string) error
	Accept(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error

	// ObserveDeadline re-checks the deadline for a record; used by the
	// background worker at the deadline instant.
	ObserveDeadline(ctx context.Context, id string) error
}
