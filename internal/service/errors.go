package service

import "errors"

var (
	// ErrCouponExists is returned when attempting to create a coupon that already exists
	ErrCouponExists = errors.New("coupon already exists")

	// ErrInvalidCoupon is returned when a coupon code cannot be found
	ErrInvalidCoupon = errors.New("invalid coupon code")

	// ErrCouponExpired is returned when a coupon is inactive or past its validity window
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrCouponNotYetActive is returned when a coupon's validity window has not opened yet
	ErrCouponNotYetActive = errors.New("coupon is not active yet")

	// ErrCouponWindowInvalid is returned when a coupon's validFrom is after its validUntil
	ErrCouponWindowInvalid = errors.New("coupon validity window is invalid")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrOrderNotFound is returned when an order cannot be found
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotCancellable is returned when cancellation is attempted on an order
	// that is already Shipped, Delivered or Cancelled
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")

	// ErrInvalidStatus is returned when a status update names an unknown or
	// disallowed target status
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrUnauthorized is returned when an actor attempts an operation they do not
	// own and are not privileged for
	ErrUnauthorized = errors.New("not authorized")

	// ErrPriceResolution is returned in strict pricing mode when a cart line's
	// price cannot be resolved against the catalog
	ErrPriceResolution = errors.New("unable to resolve authoritative price")

	// ErrUserNotFound is returned when a user's progression record cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateOrder is returned when an idempotency key has already been used
	// for a previous order creation
	ErrDuplicateOrder = errors.New("order already created for idempotency key")
)
