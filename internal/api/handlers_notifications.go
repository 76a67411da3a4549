package api

import "github.com/gofiber/fiber/v2"

const defaultNotificationLimit = 50

func (handler *Handler) ListNotifications(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c, "limit")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit == 0 || limit > 200 {
		limit = defaultNotificationLimit
	}

	notifications, err := handler.notifications.List(c.UserContext(), userID, queryFlag(c, "unread"), limit)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch notifications")
	}
	return c.JSON(notifications)
}

func (handler *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	if err := handler.notifications.MarkRead(c.UserContext(), userID, notificationID); err != nil {
		return handler.serviceError(c, err, "failed to update notification")
	}
	return c.JSON(fiber.Map{"ok": true})
}
