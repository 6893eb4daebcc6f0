package quoteRepo

import (
	"context"
	"errors"

	"charterhub/models"
)

// ErrNotFound is returned when no quote matches the given id.
var ErrNotFound = errors.New("quote not found")

// QuoteRepository persists operator bids. Price and operator are immutable
// after creation; only the status field is ever updated.
type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByID(ctx context.Context, id string) (*models.Quote, error)
	ListByRequestID(ctx context.Context, requestID string) ([]models.Quote, error)
	CountByRequestID(ctx context.Context, requestID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error
}
