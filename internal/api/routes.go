package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	api.Get("/profile", handler.GetProfile)
	api.Put("/profile", handler.UpdateProfile)

	logs := api.Group("/logs")
	logs.Get("", handler.ListLogs)
	logs.Get("/:date", handler.GetLog)
	logs.Put("/:date", handler.UpsertLog)

	pillars := api.Group("/pillars")
	pillars.Get("", handler.GetPillars)
	pillars.Get("/:pillar/answers", handler.GetPillarAnswers)
	pillars.Post("/:pillar/forms", handler.SubmitPillarForm)
	api.Get("/forms", handler.ListForms)

	score := api.Group("/score")
	score.Get("", handler.GetScore)
	score.Get("/history", handler.GetScoreHistory)
	score.Post("/recalculate", handler.RecalculateScore)

	api.Get("/cycle", handler.GetCycle)

	notifications := api.Group("/notifications")
	notifications.Get("", handler.ListNotifications)
	notifications.Post("/:id/read", handler.MarkNotificationRead)

	api.Get("/reports", handler.ListReports)
	api.Post("/reports", handler.GenerationLimited, handler.CreateReport)
	api.Post("/chat", handler.GenerationLimited, handler.Chat)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
