package feed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
)

func newManager(t *testing.T, f *fixture) *SessionManager {
	t.Helper()
	deps := f.deps(t, nil)
	return NewSessionManager(
		f.profiles,
		f.profiles,
		f.prefs,
		deps.Scorer,
		deps.Evaluator,
		deps.Processor,
		deps.Reconciler,
		Config{PageSize: 10},
		zap.NewNop(),
	)
}

func TestSessionManager_Lifecycle(t *testing.T) {
	f := newFixture(t)
	f.addCandidates(t, 2, 3)
	m := newManager(t, f)
	ctx := context.Background()

	e, err := m.Session(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, e.State().Cards, 2)

	same, err := m.Session(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, e, same)

	m.Invalidate(1)
	_, ok := m.Get(1)
	assert.False(t, ok)
	assert.ErrorIs(t, e.Load(ctx), domain.ErrSessionClosed)

	fresh, err := m.Session(ctx, 1)
	require.NoError(t, err)
	assert.NotSame(t, e, fresh)

	m.Shutdown()
	_, ok = m.Get(1)
	assert.False(t, ok)
}

func TestSessionManager_UnknownViewer(t *testing.T) {
	m := newManager(t, newFixture(t))

	_, err := m.Session(context.Background(), 42)

	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSessionManager_UpdateScoring(t *testing.T) {
	m := newManager(t, newFixture(t))
	before := m.Scorer()

	bad := compatibility.DefaultConfig()
	bad.Weights.Budget = 0.9
	assert.Error(t, m.UpdateScoring(bad))
	assert.Same(t, before, m.Scorer())

	cfg := compatibility.DefaultConfig()
	cfg.BudgetMaxGap = 3000
	require.NoError(t, m.UpdateScoring(cfg))
	assert.Equal(t, 3000.0, m.Scorer().Config().BudgetMaxGap)
}

func TestSessionManager_ConcurrentFirstRequestsShareSession(t *testing.T) {
	f := newFixture(t)
	f.addCandidates(t, 2, 3)
	m := newManager(t, f)
	ctx := context.Background()

	const callers = 8
	engines := make([]*Engine, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := m.Session(ctx, 1)
			assert.NoError(t, err)
			engines[i] = e
		}(i)
	}
	wg.Wait()

	registered, ok := m.Get(1)
	require.True(t, ok)
	for _, e := range engines {
		assert.Same(t, registered, e)
	}
	assert.NoError(t, registered.Reload(ctx))
	m.Shutdown()
}

// closingPreferences closes the viewer's session while it is starting.
type closingPreferences struct {
	m *SessionManager
}

func (p *closingPreferences) Load(ctx context.Context, viewerID int) (*domain.DiscoveryPreferences, error) {
	if e, ok := p.m.Get(viewerID); ok {
		e.Close()
	}
	return nil, domain.ErrPreferencesNotFound
}

func (p *closingPreferences) Save(ctx context.Context, viewerID int, prefs *domain.DiscoveryPreferences) error {
	return nil
}

func TestSessionManager_FailedStartIsUnregistered(t *testing.T) {
	f := newFixture(t)
	f.addCandidates(t, 2)
	m := newManager(t, f)
	m.preferences = &closingPreferences{m: m}

	_, err := m.Session(context.Background(), 1)

	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	_, ok := m.Get(1)
	assert.False(t, ok)
}
