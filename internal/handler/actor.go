package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/storefront-order-system/internal/service"
)

// Identity headers injected by the upstream gateway after authentication.
// This service never sees credentials; it trusts the gateway's assertion.
const (
	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"
)

// actorFromRequest extracts the acting identity from the gateway headers.
func actorFromRequest(c *fiber.Ctx) service.Actor {
	return service.Actor{
		UserID: c.Get(headerUserID),
		Role:   c.Get(headerRole),
	}
}

// requireUser returns the actor or writes a 401 when no identity was asserted.
func requireUser(c *fiber.Ctx) (service.Actor, bool) {
	actor := actorFromRequest(c)
	if actor.UserID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		return service.Actor{}, false
	}
	return actor, true
}
