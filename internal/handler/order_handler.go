package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/internal/service"
)

// headerIdempotencyKey lets clients dedupe order creation retries.
const headerIdempotencyKey = "Idempotency-Key"

// OrderServiceInterface defines the interface for order business logic.
type OrderServiceInterface interface {
	Create(ctx context.Context, actor service.Actor, req *model.CreateOrderRequest, idempotencyKey string) (*model.Order, error)
	GetByID(ctx context.Context, actor service.Actor, orderID string) (*model.Order, error)
	ListMine(ctx context.Context, actor service.Actor) ([]model.Order, error)
	ListAll(ctx context.Context, actor service.Actor) ([]model.Order, error)
	UpdateStatus(ctx context.Context, actor service.Actor, orderID string, status model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, actor service.Actor, orderID, reason string) (*model.Order, error)
}

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service   OrderServiceInterface
	validator *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given service and validator.
func NewOrderHandler(svc OrderServiceInterface, v *validator.Validate) *OrderHandler {
	return &OrderHandler{service: svc, validator: v}
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req model.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	order, err := h.service.Create(c.Context(), actor, &req, c.Get(headerIdempotencyKey))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		if errors.Is(err, service.ErrPriceResolution) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unable to resolve authoritative price"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", actor.UserID).
			Msg("failed to create order")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("user_id", actor.UserID).
		Str("order_id", order.ID).
		Int64("total_minor", order.TotalMinor).
		Msg("order created")

	return c.Status(fiber.StatusCreated).JSON(order)
}

// ListMyOrders handles GET /api/orders.
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	orders, err := h.service.ListMine(c.Context(), actor)
	if err != nil {
		log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to list orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(orders)
}

// ListAllOrders handles GET /api/admin/orders.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	orders, err := h.service.ListAll(c.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized as admin"})
		}
		log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to list all orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(orders)
}

// GetOrder handles GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	order, err := h.service.GetByID(c.Context(), actor, c.Params("id"))
	if err != nil {
		return h.mapOrderError(c, actor, err, "failed to get order")
	}

	return c.JSON(order)
}

// UpdateOrderStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req model.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	order, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order status"})
		}
		return h.mapOrderError(c, actor, err, "failed to update order status")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("order_id", order.ID).
		Str("status", string(order.Status)).
		Msg("order status updated")

	return c.JSON(order)
}

// CancelOrder handles POST /api/orders/:id/cancel.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req model.CancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	order, err := h.service.Cancel(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotCancellable) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "order can no longer be cancelled"})
		}
		return h.mapOrderError(c, actor, err, "failed to cancel order")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("order_id", order.ID).
		Str("user_id", actor.UserID).
		Msg("order cancelled")

	return c.JSON(fiber.Map{"message": "order cancelled successfully", "order": order})
}

// mapOrderError handles the error cases shared by the order endpoints.
func (h *OrderHandler) mapOrderError(c *fiber.Ctx, actor service.Actor, err error, logMsg string) error {
	if errors.Is(err, service.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	if errors.Is(err, service.ErrUnauthorized) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
	}
	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("user_id", actor.UserID).
		Str("order_id", c.Params("id")).
		Msg(logMsg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
