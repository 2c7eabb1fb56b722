package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-order-system/internal/festival"
	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	InsertIfAbsent(ctx context.Context, coupon *model.Coupon) (bool, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	ListActive(ctx context.Context, now time.Time) ([]model.Coupon, error)
	Deactivate(ctx context.Context, code string) error
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	repo     CouponRepositoryInterface
	calendar []festival.Festival
	now      func() time.Time
}

// NewCouponService creates a new CouponService with the given repository and
// festival policy table.
func NewCouponService(repo CouponRepositoryInterface, calendar []festival.Festival) *CouponService {
	return &CouponService{
		repo:     repo,
		calendar: calendar,
		now:      time.Now,
	}
}

// NormalizeCode canonicalizes a coupon code: codes are case-insensitive and
// stored upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create creates a new coupon from the request.
// Returns ErrCouponExists if a coupon with the same code already exists.
// Returns ErrCouponWindowInvalid if validFrom is after validUntil.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || req.DiscountPercentage == nil {
		return ErrInvalidRequest
	}
	if req.ValidFrom.After(req.ValidUntil) {
		return ErrCouponWindowInvalid
	}

	coupon := &model.Coupon{
		Code:               NormalizeCode(req.Code),
		FestivalName:       req.FestivalName,
		DiscountPercentage: *req.DiscountPercentage,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
		Message:            req.Message,
	}
	return s.repo.Insert(ctx, coupon)
}

// Evaluate validates a coupon code against its window at the given instant and
// returns the coupon when usable. It is read-only and must be re-run at order
// creation time: a preview result is never trusted at commit, since the coupon
// can legally expire between the two calls.
//
// Returns:
//   - ErrInvalidCoupon if the code is unknown
//   - ErrCouponExpired if the coupon is inactive or now is past validUntil
//   - ErrCouponNotYetActive if now is before validFrom
func (s *CouponService) Evaluate(ctx context.Context, code string, now time.Time) (*model.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrInvalidCoupon
	}

	// The window is a closed interval: both endpoints are redeemable instants.
	if !coupon.IsActive || now.After(coupon.ValidUntil) {
		return nil, ErrCouponExpired
	}
	if now.Before(coupon.ValidFrom) {
		return nil, ErrCouponNotYetActive
	}

	return coupon, nil
}

// Validate is the pre-checkout preview call. It shares Evaluate's semantics
// but reports the result as a response DTO.
func (s *CouponService) Validate(ctx context.Context, code string) (*model.ValidateCouponResponse, error) {
	coupon, err := s.Evaluate(ctx, code, s.now())
	if err != nil {
		return nil, err
	}

	return &model.ValidateCouponResponse{
		Valid:              true,
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		Message:            fmt.Sprintf("Success! %d%% discount applied.", coupon.DiscountPercentage),
	}, nil
}

// ListActive returns active coupons whose window has not closed yet.
func (s *CouponService) ListActive(ctx context.Context) ([]model.Coupon, error) {
	return s.repo.ListActive(ctx, s.now())
}

// Deactivate soft-invalidates a coupon; it stays in the store for audit.
func (s *CouponService) Deactivate(ctx context.Context, code string) error {
	return s.repo.Deactivate(ctx, NormalizeCode(code))
}

// SyncFestivalCoupons materializes coupons for every festival whose window
// contains now. The insert is conditional on the code not existing, so the job
// is idempotent: re-running never duplicates a coupon. Returns the number of
// coupons created.
func (s *CouponService) SyncFestivalCoupons(ctx context.Context, now time.Time) (int, error) {
	created := 0
	for _, f := range s.calendar {
		from, until, ok := f.InWindow(now)
		if !ok {
			continue
		}

		inserted, err := s.repo.InsertIfAbsent(ctx, &model.Coupon{
			Code:               NormalizeCode(f.Code),
			FestivalName:       f.Name,
			DiscountPercentage: f.DiscountPercentage,
			ValidFrom:          from,
			ValidUntil:         until,
			IsActive:           true,
			Message:            f.Message,
		})
		if err != nil {
			return created, fmt.Errorf("sync festival %s: %w", f.Name, err)
		}
		if inserted {
			created++
			log.Info().
				Str("festival", f.Name).
				Str("code", f.Code).
				Time("valid_from", from).
				Time("valid_until", until).
				Msg("festival coupon generated")
		}
	}
	return created, nil
}

// RunFestivalSync runs the sync job immediately and then on the given interval
// until ctx is cancelled. Sync failures are logged and retried on the next
// tick.
func (s *CouponService) RunFestivalSync(ctx context.Context, interval time.Duration) {
	sync := func() {
		if _, err := s.SyncFestivalCoupons(ctx, s.now()); err != nil {
			log.Error().Err(err).Msg("festival coupon sync failed")
		}
	}

	sync()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sync()
		}
	}
}
