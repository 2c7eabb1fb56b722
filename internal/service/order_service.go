package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-order-system/internal/loyalty"
	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/internal/notification"
	"github.com/fairyhunter13/storefront-order-system/internal/pricing"
	"github.com/fairyhunter13/storefront-order-system/pkg/database"
)

// RoleAdmin is the role string granted administrative privileges by the
// upstream identity provider.
const RoleAdmin = "admin"

// Actor identifies who is performing an operation, as asserted by the gateway.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor carries the administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, order *model.Order, idempotencyKey string) error
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*model.Order, error)
}

// UserRepositoryInterface defines the interface for loyalty progression data access.
type UserRepositoryInterface interface {
	AddExperience(ctx context.Context, tx database.TxQuerier, userID string, delta int64) (int64, error)
	UpdateRank(ctx context.Context, tx database.TxQuerier, userID string, rank model.Rank) error
	GetProgression(ctx context.Context, userID string) (*model.Progression, error)
}

// PriceResolver resolves the authoritative unit price for a cart line.
type PriceResolver interface {
	Resolve(ctx context.Context, line model.CartLine) (unitMinor int64, degraded bool, err error)
}

// CouponEvaluator re-validates a coupon code at a given instant.
type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, now time.Time) (*model.Coupon, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderService provides business logic for order creation and lifecycle
// transitions.
type OrderService struct {
	pool      TxBeginner
	orders    OrderRepositoryInterface
	users     UserRepositoryInterface
	pricing   PriceResolver
	coupons   CouponEvaluator
	notifier  notification.Notifier
	xpDivisor int64
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	pool *pgxpool.Pool,
	orders OrderRepositoryInterface,
	users UserRepositoryInterface,
	pricing PriceResolver,
	coupons CouponEvaluator,
	notifier notification.Notifier,
	xpDivisor int64,
) *OrderService {
	return newOrderService(pool, orders, users, pricing, coupons, notifier, xpDivisor)
}

// NewOrderServiceWithTxBeginner creates an OrderService with a custom TxBeginner.
// Primarily used for testing.
func NewOrderServiceWithTxBeginner(
	pool TxBeginner,
	orders OrderRepositoryInterface,
	users UserRepositoryInterface,
	pricing PriceResolver,
	coupons CouponEvaluator,
	notifier notification.Notifier,
	xpDivisor int64,
) *OrderService {
	return newOrderService(pool, orders, users, pricing, coupons, notifier, xpDivisor)
}

func newOrderService(
	pool TxBeginner,
	orders OrderRepositoryInterface,
	users UserRepositoryInterface,
	pricing PriceResolver,
	coupons CouponEvaluator,
	notifier notification.Notifier,
	xpDivisor int64,
) *OrderService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &OrderService{
		pool:      pool,
		orders:    orders,
		users:     users,
		pricing:   pricing,
		coupons:   coupons,
		notifier:  notifier,
		xpDivisor: xpDivisor,
		now:       time.Now,
	}
}

// Create builds and persists an order from a submitted cart.
//
// Each line's unit price is resolved against the catalog; the coupon, if any,
// is re-evaluated at this instant regardless of any earlier preview. An
// invalid or expired coupon is dropped silently rather than blocking checkout.
// The order insert and the owner's XP/rank update are committed in one
// transaction. A Created notification is published after commit,
// fire-and-forget.
//
// When idempotencyKey is non-empty and was used before, the previously created
// order is returned instead of creating a duplicate.
func (s *OrderService) Create(ctx context.Context, actor Actor, req *model.CreateOrderRequest, idempotencyKey string) (*model.Order, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrInvalidRequest
	}

	if idempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := s.now()

	items, subtotal, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var discount int64
	var couponCode *string
	if req.CouponCode != "" {
		coupon, err := s.coupons.Evaluate(ctx, req.CouponCode, now)
		switch {
		case err == nil:
			// Truncate toward zero: fractional minor units are never rounded up.
			discount = subtotal * int64(coupon.DiscountPercentage) / 100
			couponCode = &coupon.Code
		case errors.Is(err, ErrInvalidCoupon), errors.Is(err, ErrCouponExpired), errors.Is(err, ErrCouponNotYetActive):
			// The coupon may have expired between preview and checkout; drop it
			// silently rather than failing the order.
			log.Info().
				Str("coupon_code", req.CouponCode).
				Err(err).
				Msg("coupon no longer valid at order creation, discount dropped")
		default:
			return nil, fmt.Errorf("evaluate coupon: %w", err)
		}
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	paidAt := now
	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          actor.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   paymentMethodFor(req.PaymentID),
		CouponCode:      couponCode,
		SubtotalMinor:   subtotal,
		DiscountMinor:   discount,
		TotalMinor:      total,
		IsPaid:          true,
		PaidAt:          &paidAt,
		Status:          model.OrderStatusPending,
		CreatedAt:       now,
	}

	progression, err := s.persistOrder(ctx, order, idempotencyKey)
	if err != nil {
		if errors.Is(err, ErrDuplicateOrder) && idempotencyKey != "" {
			// Lost a race with a concurrent retry carrying the same key.
			existing, lookupErr := s.orders.GetByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.notifier.Publish(notification.EventOrderCreated, order, progression)

	return order, nil
}

// persistOrder writes the order, its items and the loyalty update in a single
// transaction, closing the dual-write consistency window between order
// persistence and XP progression.
func (s *OrderService) persistOrder(ctx context.Context, order *model.Order, idempotencyKey string) (*model.Progression, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.orders.Insert(ctx, tx, order, idempotencyKey); err != nil {
		return nil, err
	}

	earned := loyalty.EarnedXP(order.TotalMinor, s.xpDivisor)
	newXP, err := s.users.AddExperience(ctx, tx, order.UserID, earned)
	if err != nil {
		return nil, fmt.Errorf("add experience: %w", err)
	}

	rank := loyalty.RankForXP(newXP)
	if err := s.users.UpdateRank(ctx, tx, order.UserID, rank); err != nil {
		return nil, fmt.Errorf("update rank: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.Progression{UserID: order.UserID, XP: newXP, Rank: rank}, nil
}

// buildItems resolves every cart line into an immutable snapshot and
// accumulates the pre-discount subtotal. No single line aborts the
// calculation in lenient mode; a degraded resolution is logged by the
// resolver and the line keeps its fallback price.
func (s *OrderService) buildItems(ctx context.Context, lines []model.CartLine) ([]model.OrderItem, int64, error) {
	items := make([]model.OrderItem, 0, len(lines))
	var subtotal int64

	for _, line := range lines {
		unit, _, err := s.pricing.Resolve(ctx, line)
		if err != nil {
			if errors.Is(err, pricing.ErrUnresolvable) {
				return nil, 0, fmt.Errorf("resolve price for %s: %w", line.ProductID, ErrPriceResolution)
			}
			return nil, 0, fmt.Errorf("resolve price for %s: %w", line.ProductID, err)
		}

		items = append(items, model.OrderItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Image:          line.Image,
			Quantity:       line.Quantity,
			UnitPriceMinor: unit,
		})
		subtotal += unit * int64(line.Quantity)
	}

	return items, subtotal, nil
}

func paymentMethodFor(paymentID string) string {
	if paymentID == "COD" {
		return "Cash on Delivery"
	}
	return "Razorpay"
}

// GetByID fetches one order. Only the owner or an administrator may read it.
func (s *OrderService) GetByID(ctx context.Context, actor Actor, orderID string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// ListMine returns the actor's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, actor Actor) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, actor.UserID)
}

// ListAll returns every order. Administrators only.
func (s *OrderService) ListAll(ctx context.Context, actor Actor) ([]model.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.orders.ListAll(ctx)
}

// UpdateStatus moves an order to a new status. Administrators only, and the
// target may be any status except Cancelled: cancellation carries a mandatory
// reason and goes through Cancel. A StatusChanged notification is published
// fire-and-forget.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !status.Valid() || status == model.OrderStatusCancelled {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventOrderStatusChanged, order, nil)

	return order, nil
}

// Cancel transitions an order to Cancelled with a mandatory reason. The owner
// or an administrator may cancel; orders already Shipped, Delivered or
// Cancelled are rejected with ErrOrderNotCancellable. The terminal-state check
// is enforced by a conditional write at the storage layer, so a concurrent
// ship cannot be overwritten. Granted loyalty XP is not revoked.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID, reason string) (*model.Order, error) {
	if reason == "" {
		return nil, ErrInvalidRequest
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	cancelled, err := s.orders.Cancel(ctx, orderID, reason)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventOrderCancelled, cancelled, nil)

	return cancelled, nil
}
