package workers

import (
	"context"
	"log/slog"
	"time"
)

// JobQueue is the slice of the queue service the dispatcher needs
type JobQueue interface {
	ProcessQueue(ctx context.Context, batchSize int, handler func(ctx context.Context, notificationID int32) error) (int, error)
}

// Deliverer hands a single queued notification to its recipient
type Deliverer interface {
	Deliver(ctx context.Context, notificationID int32) error
}

// NotificationDispatcher drains the Redis notification queue and delivers
// each queued notification through the notification service.
type NotificationDispatcher struct {
	queueService        JobQueue
	notificationService Deliverer
	interval            time.Duration
	batchSize           int
	logger              *slog.Logger
}

func NewNotificationDispatcher(queueService JobQueue, notificationService Deliverer, interval time.Duration, batchSize int, logger *slog.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		queueService:        queueService,
		notificationService: notificationService,
		interval:            interval,
		batchSize:           batchSize,
		logger:              logger,
	}
}

// Start runs the dispatch loop until ctx is cancelled
func (w *NotificationDispatcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *NotificationDispatcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Notification dispatcher stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *NotificationDispatcher) drain(ctx context.Context) {
	processed, err := w.queueService.ProcessQueue(ctx, w.batchSize, w.notificationService.Deliver)
	if err != nil {
		w.logger.Error("Notification dispatch failed", "error", err)
		return
	}
	if processed > 0 {
		w.logger.Info("Notifications dispatched", "count", processed)
	}
}
