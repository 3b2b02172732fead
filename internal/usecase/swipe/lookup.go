package swipe

import (
	"context"

	"github.com/gdugdh24/roomly-backend/internal/repository"
)

// ReciprocalLookup answers whether candidate already liked viewer.
type ReciprocalLookup interface {
	HasLikedMe(ctx context.Context, viewerID, candidateID int) (bool, error)
}

type repositoryLookup struct {
	swipes repository.SwipeRepository
}

// NewRepositoryLookup answers from persisted swipes.
func NewRepositoryLookup(swipes repository.SwipeRepository) ReciprocalLookup {
	return &repositoryLookup{swipes: swipes}
}

func (l *repositoryLookup) HasLikedMe(ctx context.Context, viewerID, candidateID int) (bool, error) {
	return l.swipes.HasLiked(ctx, candidateID, viewerID)
}

// ChainLookup asks each lookup in order and stops at the first yes. An error
// is returned only when no lookup answered yes and one of them failed.
type ChainLookup []ReciprocalLookup

func (c ChainLookup) HasLikedMe(ctx context.Context, viewerID, candidateID int) (bool, error) {
	var firstErr error
	for _, l := range c {
		liked, err := l.HasLikedMe(ctx, viewerID, candidateID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if liked {
			return true, nil
		}
	}
	return false, firstErr
}
