package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

type swipeKey struct {
	swiper, swiped int
}

// SwipeRepository keeps the latest action per swiper and swiped pair. An
// upsert older than the stored swipe is ignored.
type SwipeRepository struct {
	mu     sync.RWMutex
	swipes map[swipeKey]domain.Swipe
}

func NewSwipeRepository() *SwipeRepository {
	return &SwipeRepository{swipes: make(map[swipeKey]domain.Swipe)}
}

var _ repository.SwipeRepository = (*SwipeRepository)(nil)

func (r *SwipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	if swipe.CreatedAt.IsZero() {
		swipe.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := swipeKey{swipe.SwiperID, swipe.SwipedID}
	if existing, ok := r.swipes[key]; ok && existing.CreatedAt.After(swipe.CreatedAt) {
		return nil
	}
	r.swipes[key] = *swipe
	return nil
}

func (r *SwipeRepository) HasLiked(ctx context.Context, swiperID, swipedID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.swipes[swipeKey{swiperID, swipedID}]
	return ok && s.Action.IsPositive(), nil
}

func (r *SwipeRepository) SwipedIDs(ctx context.Context, swiperID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []int
	for k := range r.swipes {
		if k.swiper == swiperID {
			ids = append(ids, k.swiped)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
