package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fertyfit/internal/models"
)

func (handler *Handler) GetPillars(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	pillars, err := handler.pillars.FetchPillarData(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch pillars")
	}
	return c.JSON(pillars)
}

func (handler *Handler) GetPillarAnswers(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	answers, err := handler.pillars.FetchPillarAnswers(c.UserContext(), userID, models.Pillar(c.Params("pillar")))
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch answers")
	}
	return c.JSON(fiber.Map{"answers": answers})
}

// SubmitPillarForm accepts one of the four pillars or "initial" for the
// onboarding questionnaire, which is kept as history only.
func (handler *Handler) SubmitPillarForm(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload pillarFormPayload
	if err := handler.bindPayload(c, &payload); err != nil {
		return payloadErrorResponse(c, err)
	}

	target := c.Params("pillar")
	if strings.EqualFold(strings.TrimSpace(target), models.FormTypeInitial) {
		form, err := handler.pillars.SaveInitialForm(c.UserContext(), userID, payload.toAnswers())
		if err != nil {
			return handler.serviceError(c, err, "failed to save form")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"form": form})
	}

	submission, err := handler.pillars.SavePillarForm(c.UserContext(), userID, models.Pillar(target), payload.toAnswers())
	if err != nil {
		return handler.serviceError(c, err, "failed to save form")
	}
	return c.Status(fiber.StatusCreated).JSON(submission)
}

func (handler *Handler) ListForms(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c, "limit")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}
	forms, err := handler.pillars.ListForms(c.UserContext(), userID, c.Query("type"), limit)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch forms")
	}
	return c.JSON(forms)
}
