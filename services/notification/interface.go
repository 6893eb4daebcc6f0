package notification

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher receives lifecycle events and is responsible for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// LogDispatcher writes every event to the structured log. It backs tests
// and deployments without a delivery channel configured.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event Event) error {
	d.Logger.Info("notification event",
		zap.String("event", event.Name),
		zap.String("requestId", event.Request.ID),
		zap.Int64("totalCount", event.TotalCount),
		zap.Int("hoursRemaining", event.HoursRemaining),
	)
	return nil
}
