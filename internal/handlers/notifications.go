package handlers

import (
	"strconv"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := h.Notifications.List(c.UserContext(), middleware.GetUserID(c), page, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// MarkNotificationRead marks a single notification as read
func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	notifID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.Notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), notifID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.Notifications.MarkAllRead(c.UserContext(), middleware.GetUserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Token is required")
	}

	if err := h.Users.RegisterDeviceToken(c.UserContext(), middleware.GetUserID(c), req.Token); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// notify raises a notification after the operation that caused it has committed.
// A failure here does not fail the request.
func (h *Handler) notify(c *fiber.Ctx, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	if err := h.Notifications.Notify(c.UserContext(), userID, notifType, title, body, metadata); err != nil {
		h.log.Warn("create notification failed",
			zap.Stringer("userId", userID),
			zap.String("type", notifType),
			zap.Error(err),
		)
	}
}

// displayName resolves the requester's name for notification text.
func (h *Handler) displayName(c *fiber.Ctx, userID uuid.UUID) string {
	user, err := h.Users.Get(c.UserContext(), userID)
	if err != nil {
		return "Someone"
	}
	return user.Summary().Name("Someone")
}
