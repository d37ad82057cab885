package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// NotificationQuerier defines the interface for notification database operations
type NotificationQuerier interface {
	CreateNotification(ctx context.Context, arg queries.CreateNotificationParams) (queries.Notification, error)
	GetNotificationByID(ctx context.Context, id int32) (queries.Notification, error)
	MarkNotificationSent(ctx context.Context, arg queries.MarkNotificationSentParams) error
	ListNotificationsByRecipient(ctx context.Context, arg queries.ListNotificationsByRecipientParams) ([]queries.Notification, error)
	ListUnsentNotifications(ctx context.Context, limit int32) ([]queries.Notification, error)
}

// Sender delivers a notification to the outside world (email, SMS, push).
// The implementation is a black box to this service.
type Sender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// NotificationQueuer enqueues notification IDs for background delivery
type NotificationQueuer interface {
	QueueNotification(ctx context.Context, notificationID int32) error
}

// NotificationService persists notifications and hands them to the delivery
// queue. Delivery failure never propagates into the state transition that
// triggered the notification.
type NotificationService struct {
	querier NotificationQuerier
	queue   NotificationQueuer
	sender  Sender
	clock   Clock
	logger  *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(querier NotificationQuerier, queue NotificationQueuer, sender Sender, clock Clock, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		querier: querier,
		queue:   queue,
		sender:  sender,
		clock:   clock,
		logger:  logger,
	}
}

// Create persists a notification and queues it for delivery
func (s *NotificationService) Create(ctx context.Context, req *models.NotificationRequest) (*models.NotificationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	notification, err := s.querier.CreateNotification(ctx, queries.CreateNotificationParams{
		RecipientID: req.RecipientID,
		Type:        string(req.Type),
		Title:       req.Title,
		Message:     req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := s.queue.QueueNotification(ctx, notification.ID); err != nil {
		s.logger.Warn("Failed to queue notification for delivery",
			"notification_id", notification.ID, "error", err)
	}

	return convertToNotificationResponse(notification), nil
}

// NotifyEvent is the fire-and-forget entry point used by the lifecycle
// services. Errors are logged and swallowed so a notification problem can
// never roll back the state transition that produced it.
func (s *NotificationService) NotifyEvent(ctx context.Context, recipientID int32, eventType models.NotificationType, title, message string) {
	_, err := s.Create(ctx, &models.NotificationRequest{
		RecipientID: recipientID,
		Type:        eventType,
		Title:       title,
		Message:     message,
	})
	if err != nil {
		s.logger.Error("Failed to record notification",
			"recipient_id", recipientID, "type", eventType, "error", err)
	}
}

// Deliver loads a notification, sends it through the configured Sender and
// marks it sent. Called by the queue worker.
func (s *NotificationService) Deliver(ctx context.Context, notificationID int32) error {
	record, err := s.querier.GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if record.IsSent.Bool {
		return nil
	}

	notification := models.Notification{
		ID:          record.ID,
		RecipientID: record.RecipientID,
		Type:        models.NotificationType(record.Type),
		Title:       record.Title,
		Message:     record.Message,
		CreatedAt:   record.CreatedAt.Time,
	}

	if err := s.sender.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to send notification %d: %w", notificationID, err)
	}

	err = s.querier.MarkNotificationSent(ctx, queries.MarkNotificationSentParams{
		ID:     notificationID,
		SentAt: timestampNow(s.clock),
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// ListForRecipient retrieves a user's notifications with pagination
func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID int32, limit, offset int32) ([]models.NotificationResponse, error) {
	records, err := s.querier.ListNotificationsByRecipient(ctx, queries.ListNotificationsByRecipientParams{
		RecipientID: recipientID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	responses := make([]models.NotificationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, *convertToNotificationResponse(record))
	}
	return responses, nil
}

// RequeueUnsent puts any unsent notifications back on the delivery queue.
// Run at startup so records stranded by a crash still go out.
func (s *NotificationService) RequeueUnsent(ctx context.Context, limit int32) (int, error) {
	records, err := s.querier.ListUnsentNotifications(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsent notifications: %w", err)
	}

	requeued := 0
	for _, record := range records {
		if err := s.queue.QueueNotification(ctx, record.ID); err != nil {
			s.logger.Warn("Failed to requeue notification", "notification_id", record.ID, "error", err)
			continue
		}
		requeued++
	}
	return requeued, nil
}

// convertToNotificationResponse converts a queries.Notification to NotificationResponse
func convertToNotificationResponse(n queries.Notification) *models.NotificationResponse {
	response := &models.NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        models.NotificationType(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		CreatedAt:   n.CreatedAt.Time,
	}

	if n.IsSent.Valid {
		response.IsSent = n.IsSent.Bool
	}
	if n.SentAt.Valid {
		response.SentAt = &n.SentAt.Time
	}

	return response
}
