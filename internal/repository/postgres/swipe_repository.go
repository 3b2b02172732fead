package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

type swipeRepository struct {
	db *sqlx.DB
}

func NewSwipeRepository(db *sqlx.DB) repository.SwipeRepository {
	return &swipeRepository{db: db}
}

// Upsert stores the swipe unless the pair already holds a newer one.
func (r *swipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	if swipe.CreatedAt.IsZero() {
		swipe.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO swipes (swiper_id, swiped_id, action, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (swiper_id, swiped_id)
		DO UPDATE SET action = EXCLUDED.action, created_at = EXCLUDED.created_at
		WHERE swipes.created_at <= EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query, swipe.SwiperID, swipe.SwipedID, string(swipe.Action), swipe.CreatedAt)
	return err
}

func (r *swipeRepository) HasLiked(ctx context.Context, swiperID, swipedID int) (bool, error) {
	var liked bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM swipes
			WHERE swiper_id = $1 AND swiped_id = $2 AND action IN ('like', 'super_like')
		)
	`
	err := r.db.GetContext(ctx, &liked, query, swiperID, swipedID)
	return liked, err
}

func (r *swipeRepository) SwipedIDs(ctx context.Context, swiperID int) ([]int, error) {
	ids := []int{}
	query := `SELECT swiped_id FROM swipes WHERE swiper_id = $1 ORDER BY swiped_id`
	if err := r.db.SelectContext(ctx, &ids, query, swiperID); err != nil {
		return nil, err
	}
	return ids, nil
}
