package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fertyfit/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseLimitQuery(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(value), nil
}

func queryFlag(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// serviceError maps service sentinels onto HTTP statuses. Unknown errors are
// logged and reported as 500 with fallback as the message.
func (handler *Handler) serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		return apiError(c, fiber.StatusNotFound, "profile not found")
	case errors.Is(err, services.ErrNotificationNotFound):
		return apiError(c, fiber.StatusNotFound, "notification not found")
	case errors.Is(err, services.ErrFormNotFound):
		return apiError(c, fiber.StatusNotFound, "form not found")
	case errors.Is(err, services.ErrInvalidProfileInput),
		errors.Is(err, services.ErrInvalidDayInput),
		errors.Is(err, services.ErrInvalidPillarAnswer):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrFutureDay):
		return apiError(c, fiber.StatusBadRequest, "date cannot be in the future")
	case errors.Is(err, services.ErrInvalidPillar):
		return apiError(c, fiber.StatusBadRequest, "invalid pillar")
	case errors.Is(err, services.ErrInvalidFormType):
		return apiError(c, fiber.StatusBadRequest, "invalid form type")
	case errors.Is(err, services.ErrInvalidReportKind):
		return apiError(c, fiber.StatusBadRequest, "invalid report kind")
	case errors.Is(err, services.ErrEmptyQuestion):
		return apiError(c, fiber.StatusBadRequest, "question is required")
	case errors.Is(err, services.ErrGenerationFailed):
		handler.logger.WithField("path", c.Path()).Errorf("text generation failed: %+v", err)
		return apiError(c, fiber.StatusBadGateway, "text generation unavailable")
	}

	handler.logger.WithField("path", c.Path()).Errorf("%s: %+v", fallback, err)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
