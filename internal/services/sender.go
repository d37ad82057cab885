package services

import (
	"context"
	"log/slog"

	"github.com/kibetdev/ulms/internal/models"
)

// LogSender is the default Sender. It records deliveries in the log; a
// deployment wanting real email or push swaps in its own Sender.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, notification models.Notification) error {
	s.logger.Info("Notification delivered",
		"notification_id", notification.ID,
		"recipient_id", notification.RecipientID,
		"type", notification.Type,
		"title", notification.Title,
	)
	return nil
}
