package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
	"github.com/fairyhunter13/storefront-order-system/pkg/database"
)

// UserRepository provides data access for user loyalty progression.
type UserRepository struct {
	pool PoolInterface
}

// NewUserRepository creates a new UserRepository with the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewUserRepositoryWithPool creates a new UserRepository with a custom pool interface.
// This is primarily used for testing.
func NewUserRepositoryWithPool(pool PoolInterface) *UserRepository {
	return &UserRepository{pool: pool}
}

// AddExperience grants XP to a user inside the caller's transaction and
// returns the new cumulative total. The row is created on first grant. XP only
// ever increases here; negative deltas are a programming error.
func (r *UserRepository) AddExperience(ctx context.Context, tx database.TxQuerier, userID string, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("add experience: negative delta %d", delta)
	}

	var newXP int64
	err := tx.QueryRow(ctx,
		`INSERT INTO users (id, xp) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET xp = users.xp + EXCLUDED.xp, updated_at = now()
		 RETURNING xp`,
		userID, delta,
	).Scan(&newXP)
	if err != nil {
		return 0, fmt.Errorf("add experience for %s: %w", userID, err)
	}
	return newXP, nil
}

// UpdateRank stores the rank derived from a user's cumulative XP inside the
// caller's transaction.
func (r *UserRepository) UpdateRank(ctx context.Context, tx database.TxQuerier, userID string, rank model.Rank) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET rank = $2, updated_at = now() WHERE id = $1`,
		userID, string(rank),
	)
	if err != nil {
		return fmt.Errorf("update rank for %s: %w", userID, err)
	}
	return nil
}

// GetProgression retrieves a user's XP and rank.
// Returns nil, nil if the user has no progression row yet (service layer handles this).
func (r *UserRepository) GetProgression(ctx context.Context, userID string) (*model.Progression, error) {
	query := `SELECT id, xp, rank, updated_at FROM users WHERE id = $1`

	var p model.Progression
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.XP,
		&p.Rank,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get progression for %s: %w", userID, err)
	}
	return &p, nil
}
