package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fertyfit/internal/models"
)

func (handler *Handler) GetScore(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	record, err := handler.scores.Latest(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch score")
	}
	if record == nil {
		return apiError(c, fiber.StatusNotFound, "score not calculated yet")
	}
	return c.JSON(record)
}

func (handler *Handler) GetScoreHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c, "limit")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}
	records, err := handler.scores.History(c.UserContext(), userID, limit)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch score history")
	}
	return c.JSON(records)
}

func (handler *Handler) RecalculateScore(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if _, err := handler.profiles.Get(c.UserContext(), userID); err != nil {
		return handler.serviceError(c, err, "failed to load profile")
	}
	result, err := handler.scores.Recalculate(c.UserContext(), userID, models.ScoreReasonManual)
	if err != nil {
		return handler.serviceError(c, err, "failed to recalculate score")
	}
	return c.JSON(fiber.Map{"score": result})
}
