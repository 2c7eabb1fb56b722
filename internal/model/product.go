package model

// Product is the catalog entry the order pipeline reads. The authoritative
// price is an integer minor-unit value, never a formatted string.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Image      string `json:"image"`
	Stock      int    `json:"stock"`
}
