package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotifyEvent is the asynq task type carrying one lifecycle event.
const TypeNotifyEvent = "notify:event"

// QueueDispatcher enqueues events for the background worker to deliver, so
// lifecycle operations never block on push or email transport.
type QueueDispatcher struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewQueueDispatcher returns a Dispatcher that enqueues onto the given
// asynq client.
func NewQueueDispatcher(client *asynq.Client, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{Client: client, Logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	task := asynq.NewTask(TypeNotifyEvent, payload)
	if _, err := d.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue notification event %s: %w", event.Name, err)
	}

	d.Logger.Debug("notification event enqueued",
		zap.String("event", event.Name),
		zap.String("requestId", event.Request.ID),
	)
	return nil
}
