package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioconnect-backend/internal/domains/notification/model"
	"biblioconnect-backend/internal/domains/notification/service"
	"biblioconnect-backend/internal/shared/middleware"
	"biblioconnect-backend/internal/shared/response"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's derived notifications
// GET /api/v1/users/me/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	notifications, err := h.notificationService.ForUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c)
		return
	}

	if notifications == nil {
		notifications = []model.Notification{}
	}
	response.Success(c, http.StatusOK, notifications)
}
