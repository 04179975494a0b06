package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslab/grader-go-api/internal/config"
	"github.com/campuslab/grader-go-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	RemoteGrading bool      `json:"remoteGrading"`
}

// HealthCheck returns a handler that reports application health information,
// including whether remote grading is configured.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:        "ok",
			Timestamp:     time.Now().UTC(),
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			RemoteGrading: cfg.RemoteGradingEnabled(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
