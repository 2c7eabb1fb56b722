package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-order-system/internal/festival"
	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFunc         func(ctx context.Context, coupon *model.Coupon) error
	insertIfAbsentFunc func(ctx context.Context, coupon *model.Coupon) (bool, error)
	getByCodeFunc      func(ctx context.Context, code string) (*model.Coupon, error)
	listActiveFunc     func(ctx context.Context, now time.Time) ([]model.Coupon, error)
	deactivateFunc     func(ctx context.Context, code string) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	return m.insertFunc(ctx, coupon)
}

func (m *mockCouponRepository) InsertIfAbsent(ctx context.Context, coupon *model.Coupon) (bool, error) {
	return m.insertIfAbsentFunc(ctx, coupon)
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return m.getByCodeFunc(ctx, code)
}

func (m *mockCouponRepository) ListActive(ctx context.Context, now time.Time) ([]model.Coupon, error) {
	return m.listActiveFunc(ctx, now)
}

func (m *mockCouponRepository) Deactivate(ctx context.Context, code string) error {
	return m.deactivateFunc(ctx, code)
}

func intPtr(i int) *int { return &i }

func TestCouponCreate(t *testing.T) {
	validFrom := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC)

	t.Run("success normalizes code", func(t *testing.T) {
		var inserted *model.Coupon
		repo := &mockCouponRepository{
			insertFunc: func(ctx context.Context, coupon *model.Coupon) error {
				inserted = coupon
				return nil
			},
		}
		svc := NewCouponService(repo, nil)

		err := svc.Create(context.Background(), &model.CreateCouponRequest{
			Code:               "  santa25 ",
			FestivalName:       "Christmas",
			DiscountPercentage: intPtr(25),
			ValidFrom:          validFrom,
			ValidUntil:         validUntil,
		})

		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, "SANTA25", inserted.Code)
		assert.True(t, inserted.IsActive)
		assert.Equal(t, 25, inserted.DiscountPercentage)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		repo := &mockCouponRepository{
			insertFunc: func(ctx context.Context, coupon *model.Coupon) error {
				t.Fatal("insert should not be reached")
				return nil
			},
		}
		svc := NewCouponService(repo, nil)

		err := svc.Create(context.Background(), &model.CreateCouponRequest{
			Code:               "BACKWARDS",
			FestivalName:       "Test",
			DiscountPercentage: intPtr(10),
			ValidFrom:          validUntil,
			ValidUntil:         validFrom,
		})

		assert.ErrorIs(t, err, ErrCouponWindowInvalid)
	})

	t.Run("duplicate code surfaces ErrCouponExists", func(t *testing.T) {
		repo := &mockCouponRepository{
			insertFunc: func(ctx context.Context, coupon *model.Coupon) error {
				return ErrCouponExists
			},
		}
		svc := NewCouponService(repo, nil)

		err := svc.Create(context.Background(), &model.CreateCouponRequest{
			Code:               "SANTA25",
			FestivalName:       "Christmas",
			DiscountPercentage: intPtr(25),
			ValidFrom:          validFrom,
			ValidUntil:         validUntil,
		})

		assert.ErrorIs(t, err, ErrCouponExists)
	})

	t.Run("nil request rejected", func(t *testing.T) {
		svc := NewCouponService(&mockCouponRepository{}, nil)
		assert.ErrorIs(t, svc.Create(context.Background(), nil), ErrInvalidRequest)
	})
}

func TestCouponEvaluate(t *testing.T) {
	validFrom := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC)

	stored := &model.Coupon{
		Code:               "SANTA25",
		FestivalName:       "Christmas",
		DiscountPercentage: 25,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		IsActive:           true,
	}

	repoWith := func(c *model.Coupon) *mockCouponRepository {
		return &mockCouponRepository{
			getByCodeFunc: func(ctx context.Context, code string) (*model.Coupon, error) {
				if c != nil && code == c.Code {
					return c, nil
				}
				return nil, nil
			},
		}
	}

	testCases := []struct {
		name    string
		code    string
		now     time.Time
		coupon  *model.Coupon
		wantErr error
	}{
		{"inside_window", "SANTA25", validFrom.Add(48 * time.Hour), stored, nil},
		{"window_start_inclusive", "SANTA25", validFrom, stored, nil},
		{"window_end_inclusive", "SANTA25", validUntil, stored, nil},
		{"lowercase_code_accepted", "santa25", validFrom.Add(time.Hour), stored, nil},
		{"padded_code_accepted", "  SANTA25  ", validFrom.Add(time.Hour), stored, nil},
		{"unknown_code", "NOPE", validFrom, stored, ErrInvalidCoupon},
		{"before_window", "SANTA25", validFrom.Add(-time.Second), stored, ErrCouponNotYetActive},
		{"after_window", "SANTA25", validUntil.Add(time.Second), stored, ErrCouponExpired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCouponService(repoWith(tc.coupon), nil)

			coupon, err := svc.Evaluate(context.Background(), tc.code, tc.now)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SANTA25", coupon.Code)
		})
	}

	t.Run("deactivated coupon reports expired", func(t *testing.T) {
		inactive := *stored
		inactive.IsActive = false
		svc := NewCouponService(repoWith(&inactive), nil)

		_, err := svc.Evaluate(context.Background(), "SANTA25", validFrom.Add(time.Hour))

		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("repository error wrapped", func(t *testing.T) {
		repoErr := errors.New("db down")
		repo := &mockCouponRepository{
			getByCodeFunc: func(ctx context.Context, code string) (*model.Coupon, error) {
				return nil, repoErr
			},
		}
		svc := NewCouponService(repo, nil)

		_, err := svc.Evaluate(context.Background(), "SANTA25", validFrom)

		assert.ErrorIs(t, err, repoErr)
	})
}

func TestCouponValidate(t *testing.T) {
	validFrom := time.Date(2026, 11, 24, 0, 0, 0, 0, time.UTC)
	validUntil := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)

	repo := &mockCouponRepository{
		getByCodeFunc: func(ctx context.Context, code string) (*model.Coupon, error) {
			if code != "BLACKFRIDAY" {
				return nil, nil
			}
			return &model.Coupon{
				Code:               "BLACKFRIDAY",
				DiscountPercentage: 50,
				ValidFrom:          validFrom,
				ValidUntil:         validUntil,
				IsActive:           true,
			}, nil
		},
	}
	svc := NewCouponService(repo, nil)
	svc.now = func() time.Time { return validFrom.Add(24 * time.Hour) }

	resp, err := svc.Validate(context.Background(), "blackfriday")

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "BLACKFRIDAY", resp.Code)
	assert.Equal(t, 50, resp.DiscountPercentage)
	assert.Equal(t, "Success! 50% discount applied.", resp.Message)
}

func TestSyncFestivalCoupons(t *testing.T) {
	// Dec 22 falls inside only the Christmas window of the default calendar.
	now := time.Date(2026, 12, 22, 12, 0, 0, 0, time.UTC)

	t.Run("creates coupon inside window", func(t *testing.T) {
		var created []*model.Coupon
		repo := &mockCouponRepository{
			insertIfAbsentFunc: func(ctx context.Context, coupon *model.Coupon) (bool, error) {
				created = append(created, coupon)
				return true, nil
			},
		}
		svc := NewCouponService(repo, festival.DefaultCalendar)

		n, err := svc.SyncFestivalCoupons(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, created, 1)
		assert.Equal(t, "SANTA25", created[0].Code)
		assert.Equal(t, 25, created[0].DiscountPercentage)
		assert.True(t, created[0].IsActive)
		assert.Equal(t, time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), created[0].ValidFrom)
		assert.Equal(t, time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC), created[0].ValidUntil)
	})

	t.Run("idempotent on rerun", func(t *testing.T) {
		repo := &mockCouponRepository{
			insertIfAbsentFunc: func(ctx context.Context, coupon *model.Coupon) (bool, error) {
				return false, nil // already exists
			},
		}
		svc := NewCouponService(repo, festival.DefaultCalendar)

		n, err := svc.SyncFestivalCoupons(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("no festival in window", func(t *testing.T) {
		repo := &mockCouponRepository{
			insertIfAbsentFunc: func(ctx context.Context, coupon *model.Coupon) (bool, error) {
				t.Fatal("no insert expected")
				return false, nil
			},
		}
		svc := NewCouponService(repo, festival.DefaultCalendar)

		n, err := svc.SyncFestivalCoupons(context.Background(), time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("repository failure aborts sync", func(t *testing.T) {
		repoErr := errors.New("db down")
		repo := &mockCouponRepository{
			insertIfAbsentFunc: func(ctx context.Context, coupon *model.Coupon) (bool, error) {
				return false, repoErr
			},
		}
		svc := NewCouponService(repo, festival.DefaultCalendar)

		_, err := svc.SyncFestivalCoupons(context.Background(), now)

		assert.ErrorIs(t, err, repoErr)
	})
}

func TestCouponDeactivate(t *testing.T) {
	var gotCode string
	repo := &mockCouponRepository{
		deactivateFunc: func(ctx context.Context, code string) error {
			gotCode = code
			return nil
		},
	}
	svc := NewCouponService(repo, nil)

	require.NoError(t, svc.Deactivate(context.Background(), " santa25 "))
	assert.Equal(t, "SANTA25", gotCode)
}
