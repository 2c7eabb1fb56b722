package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/internal/service"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

const couponColumns = `code, festival_name, discount_percentage, valid_from, valid_until, is_active, message, created_at`

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if a coupon with the same code already exists.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (code, festival_name, discount_percentage, valid_from, valid_until, is_active, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		coupon.Code, coupon.FestivalName, coupon.DiscountPercentage,
		coupon.ValidFrom, coupon.ValidUntil, coupon.IsActive, coupon.Message)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts a coupon unless its code already exists, making the
// festival sync job safe to re-run. Returns true when a row was inserted.
func (r *CouponRepository) InsertIfAbsent(ctx context.Context, coupon *model.Coupon) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (code, festival_name, discount_percentage, valid_from, valid_until, is_active, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (code) DO NOTHING`,
		coupon.Code, coupon.FestivalName, coupon.DiscountPercentage,
		coupon.ValidFrom, coupon.ValidUntil, coupon.IsActive, coupon.Message)
	if err != nil {
		return false, fmt.Errorf("insert coupon if absent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByCode retrieves a coupon by its normalized code.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var coupon model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.FestivalName,
		&coupon.DiscountPercentage,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.IsActive,
		&coupon.Message,
		&coupon.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// ListActive retrieves active coupons whose validity window has not closed yet.
func (r *CouponRepository) ListActive(ctx context.Context, now time.Time) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
		 WHERE is_active AND valid_until >= $1
		 ORDER BY valid_until`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(
			&c.Code, &c.FestivalName, &c.DiscountPercentage,
			&c.ValidFrom, &c.ValidUntil, &c.IsActive, &c.Message, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}

	// Return empty slice, not nil
	if coupons == nil {
		coupons = []model.Coupon{}
	}

	return coupons, nil
}

// Deactivate soft-invalidates a coupon. Coupons referenced by orders are never
// deleted, only toggled inactive for audit purposes.
func (r *CouponRepository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE coupons SET is_active = FALSE WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deactivate coupon %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrInvalidCoupon
	}
	return nil
}
