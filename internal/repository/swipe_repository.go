package repository

import (
	"context"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

type SwipeRepository interface {
	// Upsert stores the latest action of swiper on swiped.
	Upsert(ctx context.Context, swipe *domain.Swipe) error
	// HasLiked reports whether swiper's latest action on swiped was a like or super like.
	HasLiked(ctx context.Context, swiperID, swipedID int) (bool, error)
	SwipedIDs(ctx context.Context, swiperID int) ([]int, error)
}
