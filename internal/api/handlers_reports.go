package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) ListReports(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c, "limit")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}
	reports, err := handler.reports.ListReports(c.UserContext(), userID, limit)
	if err != nil {
		return handler.serviceError(c, err, "failed to fetch reports")
	}
	return c.JSON(reports)
}

func (handler *Handler) CreateReport(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload reportPayload
	if len(c.Body()) > 0 {
		if err := handler.bindPayload(c, &payload); err != nil {
			return payloadErrorResponse(c, err)
		}
	}

	if _, err := handler.profiles.Get(c.UserContext(), userID); err != nil {
		return handler.serviceError(c, err, "failed to load profile")
	}
	report, err := handler.reports.GenerateReport(c.UserContext(), userID, payload.Kind)
	if err != nil {
		return handler.serviceError(c, err, "failed to generate report")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (handler *Handler) Chat(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload chatPayload
	if err := handler.bindPayload(c, &payload); err != nil {
		return payloadErrorResponse(c, err)
	}

	if _, err := handler.profiles.Get(c.UserContext(), userID); err != nil {
		return handler.serviceError(c, err, "failed to load profile")
	}
	answer, err := handler.reports.Ask(c.UserContext(), userID, payload.Question)
	if err != nil {
		return handler.serviceError(c, err, "failed to answer question")
	}
	return c.JSON(answer)
}
