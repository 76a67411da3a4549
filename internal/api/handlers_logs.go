package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fertyfit/internal/services"
)

func (handler *Handler) ListLogs(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c, "limit")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}
	logs, err := handler.days.List(c.UserContext(), userID, limit)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch logs")
	}
	return c.JSON(logs)
}

func (handler *Handler) GetLog(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := services.ParseLocalDate(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	entry, found, err := handler.days.FetchLogByDate(c.UserContext(), userID, day)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch day")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "log not found")
	}
	return c.JSON(entry)
}

func (handler *Handler) UpsertLog(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := services.ParseLocalDate(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	var payload dailyLogPayload
	if err := handler.bindPayload(c, &payload); err != nil {
		return payloadErrorResponse(c, err)
	}

	submission, err := handler.days.Upsert(c.UserContext(), userID, day, payload.toInput())
	if err != nil {
		return handler.serviceError(c, err, "failed to save day")
	}
	return c.JSON(submission)
}
