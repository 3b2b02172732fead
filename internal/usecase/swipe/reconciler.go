package swipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

// Reconciler writes local swipe decisions through to storage. It runs after
// the local transition and never blocks a swipe.
type Reconciler struct {
	swipes  repository.SwipeRepository
	matches repository.MatchRepository
	logger  *zap.Logger
}

func NewReconciler(swipes repository.SwipeRepository, matches repository.MatchRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		swipes:  swipes,
		matches: matches,
		logger:  logger,
	}
}

// Reconcile persists the swipe and reports whether storage already holds the
// counterpart like.
func (r *Reconciler) Reconcile(ctx context.Context, swipe domain.Swipe) (bool, error) {
	if err := r.swipes.Upsert(ctx, &swipe); err != nil {
		return false, fmt.Errorf("failed to persist swipe: %w", err)
	}
	if !swipe.Action.IsPositive() {
		return false, nil
	}

	liked, err := r.swipes.HasLiked(ctx, swipe.SwipedID, swipe.SwiperID)
	if err != nil {
		return false, fmt.Errorf("failed to check mutual like: %w", err)
	}
	return liked, nil
}

// SaveMutualMatch stores mm unless the pair already has a match.
func (r *Reconciler) SaveMutualMatch(ctx context.Context, mm *domain.MutualMatch) error {
	existing, err := r.matches.GetByUsers(ctx, mm.User1.UserID, mm.User2.UserID)
	if err == nil && existing != nil {
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrMatchNotFound) {
		return fmt.Errorf("failed to look up match: %w", err)
	}

	if err := r.matches.Create(ctx, mm); err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	r.logger.Debug("mutual match persisted", zap.String("match_id", mm.ID))
	return nil
}
