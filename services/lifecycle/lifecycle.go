package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	operatorRepo "charterhub/database/repository/operator"
	quoteRepo "charterhub/database/repository/quote"
	requestRepo "charterhub/database/repository/request"
	"charterhub/models"
	"charterhub/services/notification"
)

// DeadlineScheduler lets the lifecycle arrange a deadline re-check at the
// deadline instant. Lazy-on-read observation remains authoritative; the
// scheduled check only makes the first observation prompt.
type DeadlineScheduler interface {
	ScheduleDeadlineCheck(ctx context.Context, requestID string, at time.Time) error
}

// DefaultLifecycleService implements Service over the request repository.
type DefaultLifecycleService struct {
	Repo          requestRepo.CharterRequestRepository
	Quotes        quoteRepo.QuoteRepository
	Operators     operatorRepo.OperatorRepository
	Dispatcher    notification.Dispatcher
	Scheduler     DeadlineScheduler // optional
	QuoteLinkBase string
	DeadlineHours int
	Logger        *zap.Logger
}

// CreateDraft persists the finished request as a new Draft record and
// emits RequestSubmitted. A repeat call for the same session returns the
// record created the first time.
func (s *DefaultLifecycleService) CreateDraft(ctx context.Context, record *models.CharterRequestRecord) (*models.CharterRequestRecord, error) {
	if existing, err := s.Repo.GetBySessionID(ctx, record.SessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, requestRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing request: %w", err)
	}

	record.Status = models.StatusDraft
	if err := s.Repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist charter request: %w", err)
	}

	event := notification.NewRequestSubmitted(*record, s.quoteLink(record.ID))
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		s.Logger.Warn("failed to dispatch RequestSubmitted",
			zap.String("requestId", record.ID), zap.Error(err))
	}
	return record, nil
}

func (s *DefaultLifecycleService) quoteLink(requestID string) string {
	return fmt.Sprintf("%s/%s", s.QuoteLinkBase, requestID)
}

// Get returns a record and lazily observes a passed deadline.
func (s *DefaultLifecycleService) Get(ctx context.Context, id string) (*models.CharterRequestRecord, error) {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.observeDeadline(ctx, record)
	return record, nil
}

func (s *DefaultLifecycleService) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.CharterRequestRecord, error) {
	return s.Repo.ListByStatus(ctx, status)
}

// BeginReview moves a Draft into administrative review.
func (s *DefaultLifecycleService) BeginReview(ctx context.Context, id string) error {
	return s.apply(ctx, id, EventBeginReview)
}

// Publish opens a request for bids. Both pickup and destination must carry
// coordinates; the rejection names whichever side is missing.
func (s *DefaultLifecycleService) Publish(ctx context.Context, id string, deadline *time.Time) error {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	to, err := Next(record.Status, EventPublish)
	if err != nil {
		return err
	}

	var missing []string
	if !record.Request.Trip.Pickup.Geocoded() {
		missing = append(missing, "pickup")
	}
	if !record.Request.Trip.Destination.Geocoded() {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return NewMissingCoordinatesError(missing)
	}

	dl := time.Now().Add(time.Duration(s.DeadlineHours) * time.Hour)
	if deadline != nil {
		dl = *deadline
	}
	if err := s.Repo.SetQuoteDeadline(ctx, id, dl); err != nil {
		return fmt.Errorf("failed to set quote deadline: %w", err)
	}
	if err := s.Repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}
	record.Status = to
	record.QuoteDeadline = &dl

	if s.Scheduler != nil {
		if err := s.Scheduler.ScheduleDeadlineCheck(ctx, id, dl); err != nil {
			s.Logger.Warn("failed to schedule deadline check",
				zap.String("requestId", id), zap.Error(err))
		}
	}

	operators, err := s.Operators.ListActive(ctx)
	if err != nil {
		s.Logger.Warn("failed to list operators for publish fan-out",
			zap.String("requestId", id), zap.Error(err))
	}
	event := notification.NewRequestPublished(*record, operators)
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		s.Logger.Warn("failed to dispatch RequestPublished",
			zap.String("requestId", id), zap.Error(err))
	}
	return nil
}

// Withdraw cancels a request. Completed records and already-cancelled
// records are rejected, not silently accepted.
func (s *DefaultLifecycleService) Withdraw(ctx context.Context, id string) error {
	return s.apply(ctx, id, EventWithdraw)
}

// Accept marks the requester's chosen quote outcome on the request.
func (s *DefaultLifecycleService) Accept(ctx context.Context, id string) error {
	return s.apply(ctx, id, EventAccept)
}

// Complete ends the lifecycle; no further transitions are permitted.
func (s *DefaultLifecycleService) Complete(ctx context.Context, id string) error {
	return s.apply(ctx, id, EventComplete)
}

// apply validates an externally-triggered transition against the table and
// performs it.
func (s *DefaultLifecycleService) apply(ctx context.Context, id string, event TransitionEvent) error {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	to, err := Next(record.Status, event)
	if err != nil {
		return err
	}
	return s.Repo.UpdateStatus(ctx, id, to)
}

// ObserveDeadline re-reads the record and runs the lazy deadline check.
func (s *DefaultLifecycleService) ObserveDeadline(ctx context.Context, id string) error {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.observeDeadline(ctx, record)
	return nil
}

// observeDeadline fires QuoteDeadlineReached exactly once per record, the
// first time the deadline is seen as passed. The deadline never forces a
// status transition by itself.
func (s *DefaultLifecycleService) observeDeadline(ctx context.Context, record *models.CharterRequestRecord) {
	if record.DeadlineNotified || !DeadlinePassed(record.QuoteDeadline, time.Now()) {
		return
	}

	flipped, err := s.Repo.MarkDeadlineNotified(ctx, record.ID)
	if err != nil {
		s.Logger.Warn("failed to mark deadline notified",
			zap.String("requestId", record.ID), zap.Error(err))
		return
	}
	if !flipped {
		return // another reader observed it first
	}

	count, err := s.Quotes.CountByRequestID(ctx, record.ID)
	if err != nil {
		s.Logger.Warn("failed to count quotes for deadline event",
			zap.String("requestId", record.ID), zap.Error(err))
	}
	event := notification.NewQuoteDeadlineReached(*record, count)
	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		s.Logger.Warn("failed to dispatch QuoteDeadlineReached",
			zap.String("requestId", record.ID), zap.Error(err))
	}
}
