package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslab/grader-go-api/internal/config"
	"github.com/campuslab/grader-go-api/internal/handler"
	"github.com/campuslab/grader-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeHandler *handler.GradeHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.GradeHandler != nil {
		gradeGroup := api.Group("/grade")
		deps.GradeHandler.Register(gradeGroup)
	}
}
