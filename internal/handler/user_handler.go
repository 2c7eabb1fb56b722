package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// UserServiceInterface defines the interface for user progression reads.
type UserServiceInterface interface {
	GetProgression(ctx context.Context, userID string) (*model.Progression, error)
}

// UserHandler handles HTTP requests for user progression.
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler with the given service.
func NewUserHandler(svc UserServiceInterface) *UserHandler {
	return &UserHandler{service: svc}
}

// GetProgression handles GET /api/users/me/progression.
func (h *UserHandler) GetProgression(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	p, err := h.service.GetProgression(c.Context(), actor.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to get progression")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(p)
}
