package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// ProductRepository provides read access to the local product table. The order
// pipeline only reads products; the catalog service owns them.
type ProductRepository struct {
	pool PoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a new ProductRepository with a custom pool interface.
// This is primarily used for testing.
func NewProductRepositoryWithPool(pool PoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID retrieves a product by id.
// Returns nil, nil if the product is not found (price resolver handles this).
func (r *ProductRepository) GetByID(ctx context.Context, productID string) (*model.Product, error) {
	query := `SELECT id, name, price_minor, image, stock FROM products WHERE id = $1`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&p.ID,
		&p.Name,
		&p.PriceMinor,
		&p.Image,
		&p.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let resolver handle
		}
		return nil, fmt.Errorf("get product by id %s: %w", productID, err)
	}
	return &p, nil
}
