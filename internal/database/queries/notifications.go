package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const notificationColumns = `id, recipient_id, type, title, message, is_sent, sent_at, created_at`

func scanNotification(row interface {
	Scan(dest ...interface{}) error
}) (Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message,
		&n.IsSent, &n.SentAt, &n.CreatedAt,
	)
	return n, err
}

const createNotification = `
INSERT INTO notifications (recipient_id, type, title, message)
VALUES ($1, $2, $3, $4)
RETURNING ` + notificationColumns

type CreateNotificationParams struct {
	RecipientID int32
	Type        string
	Title       string
	Message     string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	row := q.db.QueryRow(ctx, createNotification,
		arg.RecipientID, arg.Type, arg.Title, arg.Message)
	return scanNotification(row)
}

const getNotificationByID = `
SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

func (q *Queries) GetNotificationByID(ctx context.Context, id int32) (Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, getNotificationByID, id))
}

const markNotificationSent = `
UPDATE notifications SET is_sent = true, sent_at = $2 WHERE id = $1`

type MarkNotificationSentParams struct {
	ID     int32
	SentAt pgtype.Timestamp
}

func (q *Queries) MarkNotificationSent(ctx context.Context, arg MarkNotificationSentParams) error {
	_, err := q.db.Exec(ctx, markNotificationSent, arg.ID, arg.SentAt)
	return err
}

const listNotificationsByRecipient = `
SELECT ` + notificationColumns + ` FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListNotificationsByRecipientParams struct {
	RecipientID int32
	Limit       int32
	Offset      int32
}

func (q *Queries) ListNotificationsByRecipient(ctx context.Context, arg ListNotificationsByRecipientParams) ([]Notification, error) {
	rows, err := q.db.Query(ctx, listNotificationsByRecipient, arg.RecipientID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

const listUnsentNotifications = `
SELECT ` + notificationColumns + ` FROM notifications
WHERE is_sent = false
ORDER BY created_at
LIMIT $1`

func (q *Queries) ListUnsentNotifications(ctx context.Context, limit int32) ([]Notification, error) {
	rows, err := q.db.Query(ctx, listUnsentNotifications, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
