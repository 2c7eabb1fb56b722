package model

import "time"

// OrderStatus describes the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
// Shipped, Delivered and Cancelled are terminal with respect to cancellation.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// OrderItem is a line-item snapshot captured at order creation time.
// Snapshots are immutable so the order stays historically accurate even if the
// product is later renamed or repriced.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	Quantity       int    `json:"quantity"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// ShippingAddress is the address snapshot stored on the order.
type ShippingAddress struct {
	Address    string `json:"address" validate:"required,notblank,max=512"`
	City       string `json:"city" validate:"required,notblank,max=255"`
	PostalCode string `json:"postal_code" validate:"required,notblank,max=32"`
	Country    string `json:"country" validate:"required,notblank,max=255"`
}

// Order represents a persisted order. Monetary fields are integer minor
// currency units; TotalMinor = SubtotalMinor - DiscountMinor and is never
// negative.
type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	Items              []OrderItem     `json:"items"`
	ShippingAddress    ShippingAddress `json:"shipping_address"`
	PaymentMethod      string          `json:"payment_method"`
	CouponCode         *string         `json:"coupon_code,omitempty"`
	SubtotalMinor      int64           `json:"subtotal_minor"`
	DiscountMinor      int64           `json:"discount_minor"`
	TotalMinor         int64           `json:"total_minor"`
	IsPaid             bool            `json:"is_paid"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	Status             OrderStatus     `json:"status"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CartLine is one untrusted line of a submitted cart. DisplayPrice is a
// formatted price string (e.g. "$299") used only as a documented fallback when
// the product id cannot be resolved against the catalog.
type CartLine struct {
	ProductID    string `json:"product_id" validate:"required,notblank,max=255"`
	Name         string `json:"name" validate:"required,notblank,max=255"`
	Image        string `json:"image" validate:"max=1024"`
	Quantity     int    `json:"quantity" validate:"required,gte=1"`
	DisplayPrice string `json:"display_price" validate:"max=32"`
}

// CreateOrderRequest is the DTO for POST /api/orders.
type CreateOrderRequest struct {
	Items           []CartLine      `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentID       string          `json:"payment_id" validate:"required,notblank,max=255"`
	CouponCode      string          `json:"coupon_code" validate:"max=64"`
}

// UpdateOrderStatusRequest is the DTO for PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// CancelOrderRequest is the DTO for POST /api/orders/:id/cancel.
// The reason is mandatory and stored verbatim on the order.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=512"`
}
