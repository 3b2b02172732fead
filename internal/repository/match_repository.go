package repository

import (
	"context"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// MatchRepository persists mutual matches. Pairs are stored with the smaller
// user id first.
type MatchRepository interface {
	Create(ctx context.Context, match *domain.MutualMatch) error
	GetByID(ctx context.Context, id string) (*domain.MutualMatch, error)
	GetByUsers(ctx context.Context, user1ID, user2ID int) (*domain.MutualMatch, error)
	GetActiveMatches(ctx context.Context, userID int) ([]*domain.MutualMatch, error)
	UpdateStatus(ctx context.Context, id string, isActive bool) error
	TouchLastMessage(ctx context.Context, id string) error
}
