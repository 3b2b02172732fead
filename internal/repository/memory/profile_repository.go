package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

// ProfileRepository keeps profiles in process memory. It serves both the
// profile and the candidate side and is safe for concurrent use.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[int]*domain.UserProfile
	nextID   int
	swipes   repository.SwipeRepository
	latency  time.Duration
	now      func() time.Time
}

// NewProfileRepository builds the store. When swipes is set, candidates the
// viewer already swiped are left out of every page. latency delays each
// candidate fetch to mimic a remote backend.
func NewProfileRepository(swipes repository.SwipeRepository, latency time.Duration) *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[int]*domain.UserProfile),
		nextID:   1,
		swipes:   swipes,
		latency:  latency,
		now:      time.Now,
	}
}

var (
	_ repository.ProfileRepository   = (*ProfileRepository)(nil)
	_ repository.CandidateRepository = (*ProfileRepository)(nil)
)

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.UserID]; ok {
		return domain.ErrProfileAlreadyExists
	}

	now := r.now()
	profile.ID = r.nextID
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.nextID++

	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[profile.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = r.now()

	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}

// FetchCandidates pages through onboarded profiles ordered by user id. The
// cursor is the last user id of the previous page, so exclusions never shift
// page boundaries.
func (r *ProfileRepository) FetchCandidates(ctx context.Context, query domain.CandidateQuery) (*domain.CandidatePage, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	after := 0
	if query.Cursor != "" {
		v, err := strconv.Atoi(query.Cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", query.Cursor, err)
		}
		after = v
	}

	excluded := make(map[int]struct{}, len(query.Exclude))
	for _, id := range query.Exclude {
		excluded[id] = struct{}{}
	}
	if r.swipes != nil {
		swiped, err := r.swipes.SwipedIDs(ctx, query.ViewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load swiped ids: %w", err)
		}
		for _, id := range swiped {
			excluded[id] = struct{}{}
		}
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	search := strings.ToLower(strings.TrimSpace(query.SearchQuery))

	r.mu.RLock()
	ids := make([]int, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	page := &domain.CandidatePage{}
	for _, id := range ids {
		if id <= after || id == query.ViewerID {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		p := r.profiles[id]
		if !p.IsOnboardingComplete || !matchesSearch(p, search) {
			continue
		}
		if len(page.Profiles) == limit {
			page.HasMore = true
			break
		}
		out := *p
		page.Profiles = append(page.Profiles, &out)
	}
	r.mu.RUnlock()

	if n := len(page.Profiles); n > 0 {
		page.NextCursor = strconv.Itoa(page.Profiles[n-1].UserID)
	} else {
		page.NextCursor = query.Cursor
	}
	return page, nil
}

func matchesSearch(p *domain.UserProfile, search string) bool {
	if search == "" {
		return true
	}
	fields := []string{p.DisplayName}
	if p.Bio != nil {
		fields = append(fields, *p.Bio)
	}
	if p.Area != nil {
		fields = append(fields, *p.Area)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
