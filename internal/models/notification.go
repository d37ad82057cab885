package models

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType represents the kind of event a notification reports
type NotificationType string

const (
	NotificationRequestSubmitted NotificationType = "request_submitted"
	NotificationRequestApproved  NotificationType = "request_approved"
	NotificationRequestRejected  NotificationType = "request_rejected"
	NotificationBookIssued       NotificationType = "book_issued"
	NotificationBookReturned     NotificationType = "book_returned"
	NotificationOverdueNotice    NotificationType = "overdue_notice"
	NotificationFineNotice       NotificationType = "fine_notice"
)

// Notification represents a message owed to a user about a lifecycle event
type Notification struct {
	ID          int32            `json:"id"`
	RecipientID int32            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsSent      bool             `json:"is_sent"`
	SentAt      *time.Time       `json:"sent_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationRequest represents a request to create a notification
type NotificationRequest struct {
	RecipientID int32            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
}

// NotificationResponse represents a notification response
type NotificationResponse struct {
	ID          int32            `json:"id"`
	RecipientID int32            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	IsSent      bool             `json:"is_sent"`
	SentAt      *time.Time       `json:"sent_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ValidateNotificationType validates a notification type value
func ValidateNotificationType(t NotificationType) bool {
	switch t {
	case NotificationRequestSubmitted, NotificationRequestApproved,
		NotificationRequestRejected, NotificationBookIssued,
		NotificationBookReturned, NotificationOverdueNotice,
		NotificationFineNotice:
		return true
	default:
		return false
	}
}

// Validate performs validation on the notification request
func (r *NotificationRequest) Validate() error {
	if r.RecipientID <= 0 {
		return fmt.Errorf("recipient_id must be positive")
	}
	if !ValidateNotificationType(r.Type) {
		return fmt.Errorf("invalid notification type: %s", r.Type)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
