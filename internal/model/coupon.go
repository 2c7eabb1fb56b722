package model

import "time"

// Coupon represents a festival discount coupon.
// Codes are stored normalized to upper case; the validity window is a closed
// interval, both endpoints inclusive. Coupons are never deleted once referenced
// by an order, only soft-invalidated via IsActive.
type Coupon struct {
	Code               string    `json:"code"`
	FestivalName       string    `json:"festival_name"`
	DiscountPercentage int       `json:"discount_percentage"`
	ValidFrom          time.Time `json:"valid_from"`
	ValidUntil         time.Time `json:"valid_until"`
	IsActive           bool      `json:"is_active"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"-"` // Not exposed in API
}

// CreateCouponRequest is the DTO for creating a coupon.
type CreateCouponRequest struct {
	Code               string    `json:"code" validate:"required,notblank,max=64"`
	FestivalName       string    `json:"festival_name" validate:"required,notblank,max=255"`
	DiscountPercentage *int      `json:"discount_percentage" validate:"required,gte=0,lte=100"`
	ValidFrom          time.Time `json:"valid_from" validate:"required"`
	ValidUntil         time.Time `json:"valid_until" validate:"required"`
	Message            string    `json:"message" validate:"max=512"`
}

// ValidateCouponRequest is the DTO for the pre-checkout coupon preview.
type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required,notblank,max=64"`
}

// ValidateCouponResponse is the API response DTO for POST /api/coupons/validate.
type ValidateCouponResponse struct {
	Valid              bool   `json:"valid"`
	Code               string `json:"code"`
	DiscountPercentage int    `json:"discount_percentage"`
	Message            string `json:"message"`
}
