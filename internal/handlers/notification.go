package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/middleware"
	"github.com/kibetdev/ulms/internal/services"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetMyNotifications lists the authenticated user's notifications
func (h *NotificationHandler) GetMyNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	limit, offset := paginationOffset(c)

	notifications, err := h.notificationService.ListForRecipient(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    notifications,
	})
}
