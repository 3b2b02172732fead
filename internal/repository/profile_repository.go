package repository

import (
	"context"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByUserID(ctx context.Context, userID int) (*domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
}

// CandidateRepository supplies discovery candidates. Implementations exclude
// the viewer, every id in query.Exclude and every profile the viewer already
// swiped.
type CandidateRepository interface {
	FetchCandidates(ctx context.Context, query domain.CandidateQuery) (*domain.CandidatePage, error)
}
