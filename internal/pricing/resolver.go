// Package pricing resolves authoritative unit prices for cart lines.
//
// Resolution order: the external catalog service (when configured), then the
// local product table, then the client-supplied display price as a documented
// degraded fallback, then zero. The legacy hardcoded price list lives in a
// seed migration for the product table, not here.
package pricing

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront-order-system/internal/catalog"
	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// minorUnitsPerMajor converts parsed display prices (major units, e.g. "$299")
// to minor units.
const minorUnitsPerMajor = 100

// ErrUnresolvable is returned in strict mode when no authoritative price
// exists for a cart line.
var ErrUnresolvable = errors.New("price unresolvable")

// CatalogClient is the external catalog lookup used before the local table.
type CatalogClient interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

// ProductStore is the local authoritative product table.
type ProductStore interface {
	GetByID(ctx context.Context, productID string) (*model.Product, error)
}

// Resolver resolves unit prices in integer minor units.
type Resolver struct {
	catalog  CatalogClient // optional
	products ProductStore
	strict   bool
}

// NewResolver creates a Resolver. catalog may be nil when no external catalog
// service is configured.
func NewResolver(catalogClient CatalogClient, products ProductStore, strict bool) *Resolver {
	return &Resolver{
		catalog:  catalogClient,
		products: products,
		strict:   strict,
	}
}

// Resolve returns the unit price for a cart line in minor units.
//
// degraded is true when the price did not come from an authoritative source:
// the line fell back to the client-supplied display price or to zero. In
// strict mode a degraded line returns ErrUnresolvable instead, failing the
// whole order closed.
func (r *Resolver) Resolve(ctx context.Context, line model.CartLine) (unitMinor int64, degraded bool, err error) {
	if r.catalog != nil {
		p, err := r.catalog.GetProduct(ctx, line.ProductID)
		switch {
		case err == nil:
			return p.PriceMinor, false, nil
		case errors.Is(err, catalog.ErrNotFound):
			// fall through to the local table
		default:
			// Catalog unavailable is an infrastructure failure, not a missing
			// product; surface it so the caller can retry.
			return 0, false, err
		}
	}

	p, err := r.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return 0, false, err
	}
	if p != nil {
		return p.PriceMinor, false, nil
	}

	if r.strict {
		return 0, false, ErrUnresolvable
	}

	if fallback, ok := ParseDisplayPrice(line.DisplayPrice); ok {
		log.Warn().
			Str("product_id", line.ProductID).
			Int64("fallback_price_minor", fallback).
			Msg("price resolution degraded to client-supplied display price")
		return fallback, true, nil
	}

	// No catalog entry and no usable client price: the line prices at zero
	// rather than aborting the whole calculation.
	log.Warn().
		Str("product_id", line.ProductID).
		Msg("price resolution degraded to zero")
	return 0, true, nil
}

// ParseDisplayPrice parses a formatted major-unit price string such as "$299"
// by stripping all non-digit characters, and converts it to minor units.
// Returns ok=false when the string contains no digits.
func ParseDisplayPrice(s string) (minor int64, ok bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, false
	}

	var major int64
	for _, r := range digits {
		major = major*10 + int64(r-'0')
		if major > 1<<40 { // guard against absurd client input
			return 0, false
		}
	}
	return major * minorUnitsPerMajor, true
}
