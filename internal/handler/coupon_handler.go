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

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) error
	Validate(ctx context.Context, code string) (*model.ValidateCouponResponse, error)
	ListActive(ctx context.Context) ([]model.Coupon, error)
	Deactivate(ctx context.Context, code string) error
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// CreateCoupon handles POST /api/coupons requests to create a new coupon.
// Administrators only; festival coupons normally arrive via the sync job.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}
	if !actor.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized as admin"})
	}

	var req model.CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Create(c.Context(), &req); err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already exists"})
		}
		if errors.Is(err, service.ErrCouponWindowInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon validity window is invalid"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("coupon_code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).Send(nil)
}

// ValidateCoupon handles POST /api/coupons/validate, the pre-checkout preview.
// The result is advisory: the coupon is re-evaluated at order creation.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req model.ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Validate(c.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoupon) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid coupon code"})
		}
		if errors.Is(err, service.ErrCouponExpired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon has expired"})
		}
		if errors.Is(err, service.ErrCouponNotYetActive) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coupon is not active yet"})
		}
		log.Error().Err(err).Str("coupon_code", req.Code).Msg("failed to validate coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(resp)
}

// DeactivateCoupon handles DELETE /api/coupons/:code. Administrators only.
// The coupon row stays in place for historical orders; it just stops matching.
func (h *CouponHandler) DeactivateCoupon(c *fiber.Ctx) error {
	actor, ok := requireUser(c)
	if !ok {
		return nil
	}
	if !actor.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized as admin"})
	}

	code := c.Params("code")
	if err := h.service.Deactivate(c.Context(), code); err != nil {
		if errors.Is(err, service.ErrInvalidCoupon) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid coupon code"})
		}
		log.Error().Err(err).Str("coupon_code", code).Msg("failed to deactivate coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"message": "coupon deactivated"})
}

// ListActiveCoupons handles GET /api/coupons.
func (h *CouponHandler) ListActiveCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.ListActive(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(coupons)
}
