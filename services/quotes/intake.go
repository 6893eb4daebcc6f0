// Package quotes validates and records operator bids against published
// requests and derives the lifecycle side effects of each bid.
package quotes

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	quoteRepo "charterhub/database/repository/quote"
	requestRepo "charterhub/database/repository/request"
	"charterhub/models"
	"charterhub/services/lifecycle"
	"charterhub/services/notification"
)

// IntakeService records operator bids.
type IntakeService interface {
	// SubmitQuote validates and records a bid, returning the new quote id.
	SubmitQuote(ctx context.Context, requestID, operatorID string, priceMinor int64, currency, notes string) (string, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.Quote, error)
}

// DefaultIntakeService implements IntakeService.
type DefaultIntakeService struct {
	Requests   requestRepo.CharterRequestRepository
	Quotes     quoteRepo.QuoteRepository
	Dispatcher notification.Dispatcher
	Logger     *zap.Logger
}

// SubmitQuote accepts a bid against an open request (Published or
// QuotesReceived). The first successful quote flips the request to
// QuotesReceived; the flip is a conditional update so concurrent
// submissions never lose quotes and the status never reverts to Published.
func (s *DefaultIntakeService) SubmitQuote(ctx context.Context, requestID, operatorID string, priceMinor int64, currency, notes string) (string, error) {
	record, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if record.Status != models.StatusPublished && record.Status != models.StatusQuotesReceived {
		return "", NewNotOpenError(record.Status)
	}

	quote := &models.Quote{
		RequestID:  requestID,
		OperatorID: operatorID,
		PriceMinor: priceMinor,
		Currency:   currency,
		Notes:      notes,
		Status:     models.QuoteSubmitted,
	}
	if err := s.Quotes.Create(ctx, quote); err != nil {
		return "", fmt.Errorf("failed to record quote: %w", err)
	}

	count, err := s.Quotes.CountByRequestID(ctx, requestID)
	if err != nil {
		return "", fmt.Errorf("failed to count quotes: %w", err)
	}

	// Racing submitters may all reach here; the conditional update makes
	// the Published→QuotesReceived flip idempotent.
	flipped, err := s.Requests.TransitionIf(ctx, requestID, models.StatusPublished, models.StatusQuotesReceived)
	if err != nil {
		return "", fmt.Errorf("failed to update request status: %w", err)
	}
	if flipped {
		record.Status = models.StatusQuotesReceived
	}

	hours := lifecycle.HoursRemaining(record.QuoteDeadline, time.Now())
	var event notification.Event
	if count == 1 {
		event = notification.NewFirstQuoteReceived(*record, *quote)
	} else {
		event = notification.NewQuoteReceived(*record, *quote, count, hours)
	}
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		s.Logger.Warn("failed to dispatch quote event",
			zap.String("requestId", requestID),
			zap.String("quoteId", quote.ID),
			zap.Error(err),
		)
	}

	return quote.ID, nil
}

// ListByRequest returns all quotes recorded against a request in creation
// order.
func (s *DefaultIntakeService) ListByRequest(ctx context.Context, requestID string) ([]models.Quote, error) {
	return s.Quotes.ListByRequestID(ctx, requestID)
}
