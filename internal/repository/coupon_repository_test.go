package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/internal/service"
)

// mockRow implements pgx.Row for testing single-row queries.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockRows implements pgx.Rows, yielding one scanFn per row.
type mockRows struct {
	scans     []func(dest ...any) error
	index     int
	errOnRows error
}

func (m *mockRows) Close()     {}
func (m *mockRows) Err() error { return m.errOnRows }

func (m *mockRows) Next() bool {
	if m.index < len(m.scans) {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	return m.scans[m.index-1](dest...)
}

func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockPool implements PoolInterface for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func TestCouponRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any

	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := NewCouponRepositoryWithPool(mock)
	coupon := &model.Coupon{
		Code:               "SANTA25",
		FestivalName:       "Christmas",
		DiscountPercentage: 25,
		IsActive:           true,
	}

	err := repo.Insert(context.Background(), coupon)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO coupons")
	assert.Contains(t, capturedSQL, "$7")
	assert.Equal(t, "SANTA25", capturedArgs[0])
	assert.Equal(t, 25, capturedArgs[2])
}

func TestCouponRepository_Insert_DuplicateCoupon(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			pgErr := &pgconn.PgError{
				Code:    "23505",
				Message: "duplicate key value violates unique constraint",
			}
			return pgconn.CommandTag{}, pgErr
		},
	}

	repo := NewCouponRepositoryWithPool(mock)

	err := repo.Insert(context.Background(), &model.Coupon{Code: "SANTA25"})

	assert.ErrorIs(t, err, service.ErrCouponExists)
}

func TestCouponRepository_Insert_DatabaseError(t *testing.T) {
	dbErr := errors.New("connection refused")
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	repo := NewCouponRepositoryWithPool(mock)

	err := repo.Insert(context.Background(), &model.Coupon{Code: "SANTA25"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrCouponExists), "should not map generic errors to ErrCouponExists")
	assert.ErrorIs(t, err, dbErr)
}

func TestCouponRepository_InsertIfAbsent(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		var capturedSQL string
		mock := &mockPool{
			execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
				capturedSQL = sql
				return pgconn.NewCommandTag("INSERT 0 1"), nil
			},
		}
		repo := NewCouponRepositoryWithPool(mock)

		inserted, err := repo.InsertIfAbsent(context.Background(), &model.Coupon{Code: "SANTA25"})

		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Contains(t, capturedSQL, "ON CONFLICT (code) DO NOTHING")
	})

	t.Run("already exists", func(t *testing.T) {
		mock := &mockPool{
			execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("INSERT 0 0"), nil
			},
		}
		repo := NewCouponRepositoryWithPool(mock)

		inserted, err := repo.InsertIfAbsent(context.Background(), &model.Coupon{Code: "SANTA25"})

		require.NoError(t, err)
		assert.False(t, inserted, "conflicting insert must report not inserted, not error")
	})
}

func TestCouponRepository_GetByCode_Success(t *testing.T) {
	validFrom := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC)

	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error {
					*(dest[0].(*string)) = "SANTA25"
					*(dest[1].(*string)) = "Christmas"
					*(dest[2].(*int)) = 25
					*(dest[3].(*time.Time)) = validFrom
					*(dest[4].(*time.Time)) = validUntil
					*(dest[5].(*bool)) = true
					*(dest[6].(*string)) = "Merry Christmas! Ho Ho Ho"
					*(dest[7].(*time.Time)) = validFrom
					return nil
				},
			}
		},
	}

	repo := NewCouponRepositoryWithPool(mock)
	coupon, err := repo.GetByCode(context.Background(), "SANTA25")

	require.NoError(t, err)
	require.NotNil(t, coupon)
	assert.Equal(t, "SANTA25", coupon.Code)
	assert.Equal(t, 25, coupon.DiscountPercentage)
	assert.Equal(t, validUntil, coupon.ValidUntil)
	assert.True(t, coupon.IsActive)
}

func TestCouponRepository_GetByCode_NotFound(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{
				scanFn: func(dest ...any) error { return pgx.ErrNoRows },
			}
		},
	}

	repo := NewCouponRepositoryWithPool(mock)
	coupon, err := repo.GetByCode(context.Background(), "NONEXISTENT")

	require.NoError(t, err)
	assert.Nil(t, coupon, "should return nil for not found")
}

func TestCouponRepository_GetByCode_VerifiesParameterizedQuery(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	repo := NewCouponRepositoryWithPool(mock)

	_, _ = repo.GetByCode(context.Background(), "'; DROP TABLE coupons;--")

	assert.Contains(t, capturedSQL, "$1")
	assert.NotContains(t, capturedSQL, "DROP TABLE", "input must be passed as a parameter")
	assert.Equal(t, "'; DROP TABLE coupons;--", capturedArgs[0])
}

func TestCouponRepository_ListActive(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		couponScan := func(code string, pct int) func(dest ...any) error {
			return func(dest ...any) error {
				*(dest[0].(*string)) = code
				*(dest[2].(*int)) = pct
				*(dest[5].(*bool)) = true
				return nil
			}
		}
		mock := &mockPool{
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				assert.Contains(t, sql, "is_active AND valid_until >= $1")
				return &mockRows{scans: []func(dest ...any) error{
					couponScan("SPOOKY15", 15),
					couponScan("DIWALI30", 30),
				}}, nil
			},
		}

		repo := NewCouponRepositoryWithPool(mock)
		coupons, err := repo.ListActive(context.Background(), time.Now())

		require.NoError(t, err)
		require.Len(t, coupons, 2)
		assert.Equal(t, "SPOOKY15", coupons[0].Code)
		assert.Equal(t, 30, coupons[1].DiscountPercentage)
	})

	t.Run("empty result is empty slice", func(t *testing.T) {
		mock := &mockPool{
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &mockRows{}, nil
			},
		}

		repo := NewCouponRepositoryWithPool(mock)
		coupons, err := repo.ListActive(context.Background(), time.Now())

		require.NoError(t, err)
		assert.NotNil(t, coupons)
		assert.Empty(t, coupons)
	})
}

func TestCouponRepository_Deactivate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := &mockPool{
			execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
				assert.Contains(t, sql, "SET is_active = FALSE")
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		}
		repo := NewCouponRepositoryWithPool(mock)

		assert.NoError(t, repo.Deactivate(context.Background(), "SANTA25"))
	})

	t.Run("unknown code", func(t *testing.T) {
		mock := &mockPool{
			execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			},
		}
		repo := NewCouponRepositoryWithPool(mock)

		assert.ErrorIs(t, repo.Deactivate(context.Background(), "NOPE"), service.ErrInvalidCoupon)
	})
}
