package swipe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

type directedKey struct {
	from, to int
}

type pairKey struct {
	low, high int
}

func newPairKey(a, b int) pairKey {
	low, high := domain.OrderedPair(a, b)
	return pairKey{low: low, high: high}
}

// Ledger keeps one-directional matches and mutual matches. It is shared by
// every session of the process and is safe for concurrent use. Returned
// records are copies.
type Ledger struct {
	mu         sync.RWMutex
	matches    map[directedKey]*domain.Match
	mutual     map[pairKey]*domain.MutualMatch
	mutualByID map[string]*domain.MutualMatch
	now        func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		matches:    make(map[directedKey]*domain.Match),
		mutual:     make(map[pairKey]*domain.MutualMatch),
		mutualByID: make(map[string]*domain.MutualMatch),
		now:        time.Now,
	}
}

// Record stores a like or super like from viewer to candidate. A repeated
// swipe refreshes MatchType of the existing record (keeping its ID and
// IsMutual) instead of adding a new one. The second return value reports
// whether a record was created.
func (l *Ledger) Record(viewerID, candidateID int, action domain.SwipeAction, score int) (domain.Match, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := directedKey{from: viewerID, to: candidateID}
	if m, ok := l.matches[key]; ok {
		m.MatchType = action
		return *m, false
	}

	m := &domain.Match{
		ID:                 uuid.NewString(),
		ViewerID:           viewerID,
		CandidateID:        candidateID,
		MatchType:          action,
		IsMutual:           false,
		CompatibilityScore: score,
		CreatedAt:          l.now(),
	}
	l.matches[key] = m
	return *m, true
}

// Withdraw marks viewer's record toward candidate as passed, so it no longer
// counts as a like. A mutual match that already exists is left alone.
func (l *Ledger) Withdraw(viewerID, candidateID int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.matches[directedKey{from: viewerID, to: candidateID}]; ok {
		m.MatchType = domain.SwipePass
	}
}

// HasLikedMe reports whether candidate has a recorded like toward viewer.
func (l *Ledger) HasLikedMe(_ context.Context, viewerID, candidateID int) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.matches[directedKey{from: candidateID, to: viewerID}]
	return ok && m.MatchType.IsPositive(), nil
}

// MarkMutual flags both directed records of the pair as mutual and creates
// the pair's MutualMatch once. The second return value reports whether the
// MutualMatch was created by this call.
func (l *Ledger) MarkMutual(a, b *domain.UserProfile, score int) (domain.MutualMatch, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range []directedKey{{a.UserID, b.UserID}, {b.UserID, a.UserID}} {
		if m, ok := l.matches[key]; ok {
			m.IsMutual = true
		}
	}

	pk := newPairKey(a.UserID, b.UserID)
	if mm, ok := l.mutual[pk]; ok {
		return *mm, false
	}

	first, second := a, b
	if first.UserID > second.UserID {
		first, second = second, first
	}
	mm := &domain.MutualMatch{
		ID:                 uuid.NewString(),
		User1:              first.Participant(),
		User2:              second.Participant(),
		CompatibilityScore: score,
		IsActive:           true,
		CreatedAt:          l.now(),
	}
	l.mutual[pk] = mm
	l.mutualByID[mm.ID] = mm
	return *mm, true
}

func (l *Ledger) Match(viewerID, candidateID int) (domain.Match, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.matches[directedKey{from: viewerID, to: candidateID}]
	if !ok {
		return domain.Match{}, false
	}
	return *m, true
}

// Matches returns the outgoing records of viewer, oldest first.
func (l *Ledger) Matches(viewerID int) []domain.Match {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Match
	for key, m := range l.matches {
		if key.from == viewerID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (l *Ledger) MutualMatchByUsers(a, b int) (domain.MutualMatch, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	mm, ok := l.mutual[newPairKey(a, b)]
	if !ok {
		return domain.MutualMatch{}, false
	}
	return *mm, true
}

func (l *Ledger) MutualMatch(id string) (domain.MutualMatch, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	mm, ok := l.mutualByID[id]
	if !ok {
		return domain.MutualMatch{}, domain.ErrMatchNotFound
	}
	return *mm, nil
}

// MutualMatches returns the active mutual matches of userID, newest first.
func (l *Ledger) MutualMatches(userID int) []domain.MutualMatch {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.MutualMatch
	for _, mm := range l.mutualByID {
		if mm.IsActive && mm.HasUser(userID) {
			out = append(out, *mm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Deactivate ends a mutual match on behalf of one of its participants.
func (l *Ledger) Deactivate(id string, userID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mm, ok := l.mutualByID[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	if !mm.HasUser(userID) {
		return domain.ErrNotMatchParticipant
	}
	mm.IsActive = false
	return nil
}

// TouchLastMessage is called by the messaging side when a message is sent.
func (l *Ledger) TouchLastMessage(id string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mm, ok := l.mutualByID[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	mm.LastMessageAt = &at
	return nil
}
