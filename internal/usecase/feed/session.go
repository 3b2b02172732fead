package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/roomly-backend/internal/repository"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/roomly-backend/internal/usecase/filter"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

// SessionManager owns one Engine per viewer.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[int]*Engine

	profiles    repository.ProfileRepository
	candidates  repository.CandidateRepository
	preferences repository.PreferenceStore
	evaluator   *filter.Evaluator
	processor   *swipe.Processor
	reconciler  *swipe.Reconciler
	logger      *zap.Logger
	cfg         Config

	scorer atomic.Pointer[compatibility.Scorer]
}

func NewSessionManager(
	profiles repository.ProfileRepository,
	candidates repository.CandidateRepository,
	preferences repository.PreferenceStore,
	scorer *compatibility.Scorer,
	evaluator *filter.Evaluator,
	processor *swipe.Processor,
	reconciler *swipe.Reconciler,
	cfg Config,
	logger *zap.Logger,
) *SessionManager {
	m := &SessionManager{
		sessions:    make(map[int]*Engine),
		profiles:    profiles,
		candidates:  candidates,
		preferences: preferences,
		evaluator:   evaluator,
		processor:   processor,
		reconciler:  reconciler,
		logger:      logger,
		cfg:         cfg,
	}
	m.scorer.Store(scorer)
	return m
}

// Session returns the viewer's open session, starting one when needed.
// Concurrent first requests share one session. A failed first fetch does not
// fail the call; it shows up in the session state.
func (m *SessionManager) Session(ctx context.Context, viewerID int) (*Engine, error) {
	if e, ok := m.Get(viewerID); ok {
		return e, nil
	}
	return m.open(ctx, viewerID, false)
}

func (m *SessionManager) Get(viewerID int) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[viewerID]
	return e, ok
}

// Open starts a fresh session for the viewer, replacing an existing one.
func (m *SessionManager) Open(ctx context.Context, viewerID int) (*Engine, error) {
	return m.open(ctx, viewerID, true)
}

func (m *SessionManager) open(ctx context.Context, viewerID int, replace bool) (*Engine, error) {
	viewer, err := m.profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer profile: %w", err)
	}

	m.mu.Lock()
	previous, exists := m.sessions[viewerID]
	if exists && !replace {
		m.mu.Unlock()
		return previous, nil
	}
	e := NewEngine(viewer, Dependencies{
		Candidates:  m.candidates,
		Preferences: m.preferences,
		Scorer:      m.scorer.Load(),
		Evaluator:   m.evaluator,
		Processor:   m.processor,
		Reconciler:  m.reconciler,
		Logger:      m.logger,
	}, m.cfg)
	m.sessions[viewerID] = e
	m.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	metrics.SessionOpened()

	if err := e.Start(ctx); err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			m.remove(viewerID, e)
			e.Close()
			return nil, err
		}
	}
	m.logger.Debug("discovery session opened", zap.Int("viewer_id", viewerID))
	return e, nil
}

// remove unregisters e unless another session replaced it already.
func (m *SessionManager) remove(viewerID int, e *Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[viewerID] == e {
		delete(m.sessions, viewerID)
	}
}

// Leave closes the viewer's session. Late responses for it are dropped.
func (m *SessionManager) Leave(viewerID int) {
	m.mu.Lock()
	e, ok := m.sessions[viewerID]
	delete(m.sessions, viewerID)
	m.mu.Unlock()

	if ok {
		e.Close()
	}
}

// Invalidate drops the session so the next request rebuilds it, for example
// after the viewer edited their profile.
func (m *SessionManager) Invalidate(viewerID int) {
	m.Leave(viewerID)
}

// UpdateScoring swaps the scorer used by sessions opened from now on.
func (m *SessionManager) UpdateScoring(cfg compatibility.Config) error {
	scorer, err := compatibility.NewScorer(cfg)
	if err != nil {
		return err
	}
	m.scorer.Store(scorer)
	m.logger.Info("scoring configuration updated")
	return nil
}

func (m *SessionManager) Scorer() *compatibility.Scorer {
	return m.scorer.Load()
}

// Shutdown closes every session and waits for their background work.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.sessions))
	for id, e := range m.sessions {
		engines = append(engines, e)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, e := range engines {
		e.Close()
	}
	for _, e := range engines {
		e.Wait()
	}
}
