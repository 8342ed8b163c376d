package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/middleware"
	"restaurant-service/internal/notification"
	"restaurant-service/pkg/logger"
)

// NotificationRequest posts a notice. An empty user_id addresses everyone.
type NotificationRequest struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ListNotifications handles the caller's notification centre
func (h *Handler) ListNotifications(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	list, err := h.cfg.Notifications.List(c.Request().Context(), claims.UserID, c.QueryParam("unread") == "true")
	if err != nil {
		return respondError(c, err, "Failed to retrieve notifications")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateNotification handles staff posting a notice
func (h *Handler) CreateNotification(c echo.Context) error {
	var req NotificationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	n, err := h.cfg.Notifications.Create(c.Request().Context(), notification.NewNotification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, err, "Failed to create notification")
	}
	logger.FromContext(c).Info("Notification posted",
		zap.String("notification_id", n.ID),
		zap.String("user_id", n.UserID))
	return c.JSON(http.StatusCreated, n)
}

// MarkNotificationRead handles the caller reading a notice
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	n, err := h.cfg.Notifications.MarkRead(c.Request().Context(), c.Param("id"), claims.UserID)
	if err != nil {
		return respondError(c, err, "Failed to mark notification as read")
	}
	return c.JSON(http.StatusOK, n)
}
