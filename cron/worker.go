package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"charterhub/config"
	"charterhub/services/lifecycle"
	"charterhub/services/notification"
	"charterhub/utils"
)

const TypeDeadlineCheck = "deadline:check"

type deadlineCheckPayload struct {
	RequestID string `json:"requestId"`
}

// AsynqDeadlineScheduler schedules a deadline re-check task at the
// deadline instant.
type AsynqDeadlineScheduler struct {
	Client *asynq.Client
}

func (s *AsynqDeadlineScheduler) ScheduleDeadlineCheck(ctx context.Context, requestID string, at time.Time) error {
	payload, err := json.Marshal(deadlineCheckPayload{RequestID: requestID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeDeadlineCheck, payload)
	_, err = s.Client.EnqueueContext(ctx, task, asynq.ProcessAt(at))
	return err
}

// NewAsynqClient returns an asynq client over the configured queue Redis DB.
func NewAsynqClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}

// InitNotificationWorker runs the background worker that delivers queued
// notification events and fires scheduled deadline checks.
func InitNotificationWorker(lifecycleSvc lifecycle.Service, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotifyEvent, handleNotifyEvent(logger))
	mux.HandleFunc(TypeDeadlineCheck, handleDeadlineCheck(lifecycleSvc, logger))

	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleNotifyEvent delivers one lifecycle event: structured log always,
// plus FCM pushes where the payload carries push targets.
func handleNotifyEvent(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event notification.Event
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return err
		}

		logger.Info("delivering notification event",
			zap.String("event", event.Name),
			zap.String("requestId", event.Request.ID),
			zap.Int64("totalCount", event.TotalCount),
		)

		if event.Name == notification.EventRequestPublished {
			pushToOperators(ctx, event, logger)
		}
		return nil
	}
}

// pushToOperators fans a published request out to every operator with a
// registered push token.
func pushToOperators(ctx context.Context, event notification.Event, logger *zap.Logger) {
	if utils.FCMClient == nil {
		return
	}
	trip := event.Request.Request.Trip
	body := trip.Pickup.Name + " to " + trip.Destination.Name
	for _, op := range event.Operators {
		if op.FCMToken == "" {
			continue
		}
		msg := &messaging.Message{
			Token: op.FCMToken,
			Notification: &messaging.Notification{
				Title: "New charter request open for quotes",
				Body:  body,
			},
			Data: map[string]string{
				"type":      "request_published",
				"requestId": event.Request.ID,
			},
		}
		if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
			logger.Warn("failed to push to operator",
				zap.String("operatorId", op.ID), zap.Error(err))
		}
	}
}

// handleDeadlineCheck routes a scheduled check through the same once-only
// lazy observation path reads use.
func handleDeadlineCheck(lifecycleSvc lifecycle.Service, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p deadlineCheckPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid deadline check payload", zap.Error(err))
			return err
		}
		if err := lifecycleSvc.ObserveDeadline(ctx, p.RequestID); err != nil {
			logger.Warn("deadline check failed",
				zap.String("requestId", p.RequestID), zap.Error(err))
			return err
		}
		return nil
	}
}

var _ lifecycle.DeadlineScheduler = (*AsynqDeadlineScheduler)(nil)
