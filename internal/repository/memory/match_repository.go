package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]*domain.MutualMatch
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[string]*domain.MutualMatch)}
}

var _ repository.MatchRepository = (*MatchRepository)(nil)

func (r *MatchRepository) Create(ctx context.Context, match *domain.MutualMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if match.User1.UserID > match.User2.UserID {
		match.User1, match.User2 = match.User2, match.User1
	}
	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*domain.MutualMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	out := *m
	return &out, nil
}

func (r *MatchRepository) GetByUsers(ctx context.Context, user1ID, user2ID int) (*domain.MutualMatch, error) {
	low, high := domain.OrderedPair(user1ID, user2ID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matches {
		if m.User1.UserID == low && m.User2.UserID == high {
			out := *m
			return &out, nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (r *MatchRepository) GetActiveMatches(ctx context.Context, userID int) ([]*domain.MutualMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.MutualMatch
	for _, m := range r.matches {
		if m.IsActive && m.HasUser(userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	m.IsActive = isActive
	return nil
}

func (r *MatchRepository) TouchLastMessage(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	now := time.Now()
	m.LastMessageAt = &now
	return nil
}
