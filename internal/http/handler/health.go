package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"ledgervault/internal/service"
)

// HealthCheck godoc
// @Summary      Database health
// @Description  Pings the ledger database.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// StorageHealth godoc
// @Summary      Storage health
// @Description  Reports cloud client and bucket readiness together with local upload root statistics.
// @Tags         storage
// @Produce      json
// @Success      200  {object}  service.HealthResult
// @Router       /api/storage/health [get]
func StorageHealth(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Health(c.UserContext()))
	}
}
