package api

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the page, the JSON API and the health check.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Use(requestLogger(h.log))

	app.Get("/health", h.Health)
	app.Get("/", h.Index)
	app.Post("/", h.Index)

	api := app.Group("/api")
	api.Post("/search", h.Search)
	api.Post("/notes", h.Notes)
}
