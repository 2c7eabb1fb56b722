package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is the connectivity probe used by the health endpoint. The pgx pool
// satisfies it directly.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health for load balancer and deploy checks.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a HealthHandler backed by the given pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check pings the database and reports 200 {"status": "healthy"} or
// 503 {"status": "unhealthy"}. Orders cannot be taken without the store,
// so database reachability is the whole health story here.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
