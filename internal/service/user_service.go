package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/storefront-order-system/internal/model"
)

// UserService exposes loyalty progression reads for the dashboard.
type UserService struct {
	users UserRepositoryInterface
}

// NewUserService creates a new UserService.
func NewUserService(users UserRepositoryInterface) *UserService {
	return &UserService{users: users}
}

// GetProgression returns a user's XP and rank. Users without a progression row
// yet (no completed orders) start at zero XP as a Recruit.
func (s *UserService) GetProgression(ctx context.Context, userID string) (*model.Progression, error) {
	p, err := s.users.GetProgression(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progression: %w", err)
	}
	if p == nil {
		return &model.Progression{UserID: userID, XP: 0, Rank: model.RankRecruit}, nil
	}
	return p, nil
}
