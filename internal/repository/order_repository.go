package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/internal/service"
	"github.com/fairyhunter13/storefront-order-system/pkg/database"
)

// OrderRepository provides data access for orders and their line-item
// snapshots using pgx.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates a new OrderRepository with a custom pool interface.
// This is primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, status, subtotal_minor, discount_minor, total_minor,
	coupon_code, shipping_address, payment_method, is_paid, paid_at,
	cancellation_reason, created_at`

// Insert persists an order and its line items inside the caller's transaction.
// idempotencyKey may be empty, in which case creation is not deduplicated.
// Returns service.ErrDuplicateOrder when the idempotency key was already used.
func (r *OrderRepository) Insert(ctx context.Context, tx database.TxQuerier, order *model.Order, idempotencyKey string) error {
	var key *string
	if idempotencyKey != "" {
		key = &idempotencyKey
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, status, subtotal_minor, discount_minor, total_minor,
			coupon_code, shipping_address, payment_method, is_paid, paid_at, idempotency_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		order.ID, order.UserID, string(order.Status),
		order.SubtotalMinor, order.DiscountMinor, order.TotalMinor,
		order.CouponCode, order.ShippingAddress, order.PaymentMethod,
		order.IsPaid, order.PaidAt, key, order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return service.ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, ordinal, product_id, name, image, quantity, unit_price_minor)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.ID, i, item.ProductID, item.Name, item.Image, item.Quantity, item.UnitPriceMinor)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	return nil
}

// GetByID retrieves an order with its line items.
// Returns nil, nil if the order is not found (service layer handles this).
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get order by id %s: %w", orderID, err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByIdempotencyKey retrieves the order previously created with the given key.
// Returns nil, nil when no such order exists.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser retrieves a user's orders, newest first, with line items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListAll retrieves all orders, newest first, with line items.
func (r *OrderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// UpdateStatus sets an order's status and returns the updated order. There is
// no enforced linear progression: administrators may move an order between
// Pending, Processing, Shipped and Delivered for correction. Cancellation goes
// through Cancel, never through here.
// Returns service.ErrOrderNotFound if the order doesn't exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 RETURNING `+orderColumns,
		orderID, string(status))

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status %s: %w", orderID, err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel transitions an order to Cancelled with the given reason. The write is
// conditional on the order still being in a cancellable status, so a
// concurrent ship or deliver cannot be silently overwritten: the status check
// happens at the point of write, not earlier in the request.
// Returns service.ErrOrderNotFound or service.ErrOrderNotCancellable.
func (r *OrderRepository) Cancel(ctx context.Context, orderID, reason string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE orders SET status = $2, cancellation_reason = $3
		 WHERE id = $1 AND status IN ($4, $5)
		 RETURNING `+orderColumns,
		orderID, string(model.OrderStatusCancelled), reason,
		string(model.OrderStatusPending), string(model.OrderStatusProcessing))

	order, err := scanOrder(row)
	if err == nil {
		if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
			return nil, err
		}
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	// The conditional update missed: distinguish a missing order from one
	// already in a terminal status.
	var status string
	err = r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrOrderNotFound
		}
		return nil, fmt.Errorf("check order status %s: %w", orderID, err)
	}
	return nil, service.ErrOrderNotCancellable
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var refs []*model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		refs = append(refs, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	// Return empty slice, not nil
	orders := make([]model.Order, 0, len(refs))
	for _, o := range refs {
		orders = append(orders, *o)
	}

	return orders, nil
}

// attachItems loads line items for the given orders in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*model.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx,
		`SELECT order_id, product_id, name, image, quantity, unit_price_minor
		 FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, ordinal`,
		ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item model.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Image, &item.Quantity, &item.UnitPriceMinor); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order item rows: %w", err)
	}

	return nil
}

// scanOrder scans one order row in orderColumns order.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&status,
		&o.SubtotalMinor,
		&o.DiscountMinor,
		&o.TotalMinor,
		&o.CouponCode,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.IsPaid,
		&o.PaidAt,
		&o.CancellationReason,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
