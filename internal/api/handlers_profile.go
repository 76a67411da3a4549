package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fertyfit/internal/services"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load profile")
	}
	return c.JSON(profile)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload profilePayload
	if err := handler.bindPayload(c, &payload); err != nil {
		return payloadErrorResponse(c, err)
	}
	update, err := payload.toUpdate(handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid last period date")
	}

	result, err := handler.profiles.Update(c.UserContext(), userID, update)
	if err != nil {
		return handler.serviceError(c, err, "failed to save profile")
	}
	return c.JSON(result)
}

func (handler *Handler) GetCycle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return handler.serviceError(c, err, "failed to load profile")
	}
	today := services.DateAtLocation(handler.now(), handler.location)
	return c.JSON(services.BuildCycleOverview(profile, today))
}
