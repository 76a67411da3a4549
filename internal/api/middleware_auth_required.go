package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	userID, err := handler.authenticateRequest(c)
	if err != nil {
		handler.logger.WithFields(logrus.Fields{
			"path": c.Path(),
			"ip":   c.IP(),
		}).Debugf("rejected request: %v", err)
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserIDKey, userID)
	return c.Next()
}

// GenerationLimited caps report and chat generations per user inside a
// rolling window.
func (handler *Handler) GenerationLimited(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	key := strconv.FormatUint(uint64(userID), 10)
	now := handler.now()
	if !handler.generationLimiter.allow(key, now, generationLimit, generationWindow) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(generationWindow.Seconds())))
		return apiError(c, fiber.StatusTooManyRequests, "too many requests")
	}
	return c.Next()
}
