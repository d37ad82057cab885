package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueJob represents a notification delivery job in the queue
type QueueJob struct {
	ID             string    `json:"id"`
	NotificationID int32     `json:"notification_id"`
	CreatedAt      time.Time `json:"created_at"`
	RetryCount     int       `json:"retry_count"`
	MaxRetries     int       `json:"max_retries"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// QueueStats represents queue depth statistics
type QueueStats struct {
	QueueName   string `json:"queue_name"`
	PendingJobs int64  `json:"pending_jobs"`
	DeadJobs    int64  `json:"dead_jobs"`
}

// Queue names
const (
	NotificationQueue     = "notifications"
	NotificationDeadQueue = "notifications:dead"
)

// QueueService handles background notification delivery using Redis lists
type QueueService struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewQueueService creates a new queue service
func NewQueueService(redisClient *redis.Client, logger *slog.Logger) *QueueService {
	return &QueueService{
		redis:  redisClient,
		logger: logger,
	}
}

// QueueNotification adds a notification to the delivery queue
func (s *QueueService) QueueNotification(ctx context.Context, notificationID int32) error {
	job := &QueueJob{
		ID:             fmt.Sprintf("notification_%d_%d", notificationID, time.Now().UnixNano()),
		NotificationID: notificationID,
		CreatedAt:      time.Now(),
		RetryCount:     0,
		MaxRetries:     3,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal queue job: %w", err)
	}

	if err := s.redis.LPush(ctx, NotificationQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// ProcessQueue pops up to batchSize jobs and hands each to the handler.
// A failed job is requeued until its retry budget is spent, then moved to
// the dead queue.
func (s *QueueService) ProcessQueue(ctx context.Context, batchSize int, handler func(ctx context.Context, notificationID int32) error) (int, error) {
	processed := 0

	for i := 0; i < batchSize; i++ {
		data, err := s.redis.RPop(ctx, NotificationQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break // queue drained
			}
			return processed, fmt.Errorf("failed to pop job: %w", err)
		}

		var job QueueJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			s.logger.Error("Dropping malformed queue job", "error", err)
			continue
		}

		if err := handler(ctx, job.NotificationID); err != nil {
			s.requeueOrBury(ctx, &job, err)
			continue
		}
		processed++
	}

	return processed, nil
}

// GetQueueStats returns current queue depths
func (s *QueueService) GetQueueStats(ctx context.Context) (*QueueStats, error) {
	pending, err := s.redis.LLen(ctx, NotificationQueue).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue length: %w", err)
	}

	dead, err := s.redis.LLen(ctx, NotificationDeadQueue).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get dead queue length: %w", err)
	}

	return &QueueStats{
		QueueName:   NotificationQueue,
		PendingJobs: pending,
		DeadJobs:    dead,
	}, nil
}

// ClearQueue removes all jobs from the delivery queue
func (s *QueueService) ClearQueue(ctx context.Context) error {
	if err := s.redis.Del(ctx, NotificationQueue).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

func (s *QueueService) requeueOrBury(ctx context.Context, job *QueueJob, cause error) {
	job.RetryCount++
	job.ErrorMessage = cause.Error()

	queue := NotificationQueue
	if job.RetryCount >= job.MaxRetries {
		queue = NotificationDeadQueue
		s.logger.Error("Notification job exhausted retries",
			"job_id", job.ID, "notification_id", job.NotificationID, "error", cause)
	} else {
		s.logger.Warn("Notification job failed, requeueing",
			"job_id", job.ID, "retry", job.RetryCount, "error", cause)
	}

	data, err := json.Marshal(job)
	if err != nil {
		s.logger.Error("Failed to marshal job for requeue", "job_id", job.ID, "error", err)
		return
	}
	if err := s.redis.LPush(ctx, queue, data).Err(); err != nil {
		s.logger.Error("Failed to requeue job", "job_id", job.ID, "error", err)
	}
}
