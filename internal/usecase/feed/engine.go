package feed

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/roomly-backend/internal/repository"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/roomly-backend/internal/usecase/deck"
	"github.com/gdugdh24/roomly-backend/internal/usecase/filter"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

const reconcileTimeout = 10 * time.Second

type Config struct {
	PageSize         int
	LowWatermark     int
	MaxPagesPerFetch int
}

func DefaultConfig() Config {
	return Config{
		PageSize:         20,
		LowWatermark:     deck.DefaultLowWatermark,
		MaxPagesPerFetch: 3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.LowWatermark <= 0 {
		c.LowWatermark = def.LowWatermark
	}
	if c.MaxPagesPerFetch <= 0 {
		c.MaxPagesPerFetch = def.MaxPagesPerFetch
	}
	return c
}

// Dependencies are the collaborators of a discovery session. Preferences and
// Reconciler may be nil.
type Dependencies struct {
	Candidates  repository.CandidateRepository
	Preferences repository.PreferenceStore
	Scorer      *compatibility.Scorer
	Evaluator   *filter.Evaluator
	Processor   *swipe.Processor
	Reconciler  *swipe.Reconciler
	Logger      *zap.Logger
}

// Engine is the discovery session of one viewer. Every method is safe for
// concurrent use; swipes are applied one at a time in call order.
type Engine struct {
	mu sync.Mutex

	viewer *domain.UserProfile
	deps   Dependencies
	cfg    Config
	logger *zap.Logger

	deck        *deck.Deck
	filters     domain.DiscoveryFilters
	searchQuery string
	cursor      string
	swiped      map[int]struct{}

	// generation changes on every Load and on Close. A fetch or
	// reconciliation started under another generation is discarded.
	generation uint64
	loading    bool
	cancel     context.CancelFunc
	closed     bool

	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	wg            sync.WaitGroup

	// writes holds pending write-throughs in swipe order. At most one
	// drainWrites goroutine runs at a time.
	writesMu sync.Mutex
	writes   []func()
	writing  bool
}

func NewEngine(viewer *domain.UserProfile, deps Dependencies, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		viewer:        viewer,
		deps:          deps,
		cfg:           cfg,
		logger:        deps.Logger.With(zap.Int("viewer_id", viewer.UserID)),
		deck:          deck.New(cfg.LowWatermark),
		swiped:        make(map[int]struct{}),
		sessionCtx:    ctx,
		sessionCancel: cancel,
	}
}

func (e *Engine) ViewerID() int {
	return e.viewer.UserID
}

// Start restores the persisted filters and search query, then loads the
// first page.
func (e *Engine) Start(ctx context.Context) error {
	if e.deps.Preferences != nil {
		prefs, err := e.deps.Preferences.Load(ctx, e.viewer.UserID)
		switch {
		case err == nil:
			if verr := filter.Validate(&prefs.Filters); verr != nil {
				e.logger.Warn("discarding invalid saved filters", zap.Error(verr))
				prefs.Filters = domain.DiscoveryFilters{}
			}
			e.mu.Lock()
			e.filters = prefs.Filters
			e.searchQuery = prefs.SearchQuery
			e.mu.Unlock()
		case errors.Is(err, domain.ErrPreferencesNotFound):
		default:
			e.logger.Warn("failed to restore discovery preferences", zap.Error(err))
		}
	}
	return e.Load(ctx)
}

// Load replaces the deck with a fresh fetch. Any fetch still in flight is
// cancelled and its response ignored.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrSessionClosed
	}
	req := e.beginFetchLocked(ctx, true)
	e.mu.Unlock()

	return e.runFetch(req)
}

// Reload retries after a failed fetch or refreshes the deck on demand.
func (e *Engine) Reload(ctx context.Context) error {
	return e.Load(ctx)
}

// LoadMore appends the next page. It is a no-op while another fetch is in
// flight or when the repository reported no more candidates.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if e.deck.Len() == 0 {
		e.mu.Unlock()
		return e.Load(ctx)
	}
	if e.loading || !e.deck.HasMore() {
		e.mu.Unlock()
		return nil
	}
	req := e.beginFetchLocked(ctx, false)
	e.mu.Unlock()

	return e.runFetch(req)
}

// Swipe applies action to the card of candidateID. The deck advances when
// that card is the current one.
func (e *Engine) Swipe(ctx context.Context, candidateID int, action domain.SwipeAction) (*swipe.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, domain.ErrSessionClosed
	}
	return e.swipeLocked(ctx, candidateID, action)
}

// SwipeCurrent swipes the card at the current index.
func (e *Engine) SwipeCurrent(ctx context.Context, action domain.SwipeAction) (*swipe.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, domain.ErrSessionClosed
	}
	cur := e.deck.Current()
	if cur == nil {
		return nil, domain.ErrInvalidCard
	}
	return e.swipeLocked(ctx, cur.CandidateID(), action)
}

func (e *Engine) swipeLocked(ctx context.Context, candidateID int, action domain.SwipeAction) (*swipe.Result, error) {
	wasCurrent := e.deck.IsCurrent(candidateID)

	res, err := e.deps.Processor.Swipe(ctx, e.viewer, e.deck, candidateID, action)
	if err != nil {
		return nil, err
	}

	e.swiped[candidateID] = struct{}{}
	if wasCurrent {
		e.deck.Advance()
	}
	e.reconcileLocked(candidateID, action, res)
	e.maybeRefillLocked()
	return res, nil
}

// SetFilters validates and applies a partial filter update, persists it and
// reloads the deck. An invalid patch leaves the previous filters in effect.
func (e *Engine) SetFilters(ctx context.Context, patch domain.FiltersPatch) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrSessionClosed
	}
	next := patch.Apply(e.filters)
	if err := filter.Validate(&next); err != nil {
		e.deck.SetError(err.Error())
		e.mu.Unlock()
		return err
	}
	e.filters = next
	prefs := e.preferencesLocked()
	e.mu.Unlock()

	e.persist(ctx, prefs)
	return e.Load(ctx)
}

func (e *Engine) ResetFilters(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrSessionClosed
	}
	e.filters = domain.DiscoveryFilters{}
	prefs := e.preferencesLocked()
	e.mu.Unlock()

	e.persist(ctx, prefs)
	return e.Load(ctx)
}

func (e *Engine) SetSearchQuery(ctx context.Context, query string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrSessionClosed
	}
	e.searchQuery = strings.TrimSpace(query)
	prefs := e.preferencesLocked()
	e.mu.Unlock()

	e.persist(ctx, prefs)
	return e.Load(ctx)
}

// Close abandons the session. Pending fetches are cancelled and late
// responses are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.loading = false
	e.sessionCancel()
	metrics.SessionClosed()
}

// Wait blocks until background refills and reconciliations finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) preferencesLocked() domain.DiscoveryPreferences {
	return domain.DiscoveryPreferences{
		Filters:     e.filters,
		SearchQuery: e.searchQuery,
	}
}

func (e *Engine) persist(ctx context.Context, prefs domain.DiscoveryPreferences) {
	if e.deps.Preferences == nil {
		return
	}
	if err := e.deps.Preferences.Save(ctx, e.viewer.UserID, &prefs); err != nil {
		e.logger.Warn("failed to persist discovery preferences", zap.Error(err))
	}
}

type fetchRequest struct {
	ctx     context.Context
	cancel  context.CancelFunc
	gen     uint64
	reset   bool
	query   domain.CandidateQuery
	filters domain.DiscoveryFilters
}

func (e *Engine) beginFetchLocked(parent context.Context, reset bool) *fetchRequest {
	if reset {
		e.generation++
		if e.cancel != nil {
			e.cancel()
		}
	}
	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	e.loading = true

	exclude := make([]int, 0, len(e.swiped)+e.deck.Len())
	for id := range e.swiped {
		exclude = append(exclude, id)
	}
	cursor := ""
	if !reset {
		cursor = e.cursor
		for _, id := range e.deck.CandidateIDs() {
			if _, ok := e.swiped[id]; !ok {
				exclude = append(exclude, id)
			}
		}
	}
	sort.Ints(exclude)

	return &fetchRequest{
		ctx:    ctx,
		cancel: cancel,
		gen:    e.generation,
		reset:  reset,
		query: domain.CandidateQuery{
			ViewerID:    e.viewer.UserID,
			Filters:     e.filters,
			SearchQuery: e.searchQuery,
			Limit:       e.cfg.PageSize,
			Cursor:      cursor,
			Exclude:     exclude,
		},
		filters: e.filters,
	}
}

func (e *Engine) runFetch(req *fetchRequest) error {
	defer req.cancel()

	kind := "append"
	if req.reset {
		kind = "load"
	}
	started := time.Now()
	cards, hasMore, cursor, err := e.fetch(req)
	metrics.RecordFetch(kind, started, err)

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.gen != e.generation || e.closed {
		metrics.RecordStaleResponse()
		e.logger.Debug("discarding stale fetch response", zap.String("kind", kind))
		return nil
	}
	e.loading = false
	e.cancel = nil

	if err != nil {
		fetchErr := &domain.FetchError{Err: err}
		e.deck.SetError(fetchErr.Error())
		e.logger.Warn("candidate fetch failed", zap.String("kind", kind), zap.Error(err))
		return fetchErr
	}

	previousCursor := e.cursor
	e.cursor = cursor
	if req.reset {
		e.deck.Load(cards, hasMore)
		e.maybeRefillLocked()
		return nil
	}

	e.deck.Append(cards, hasMore)
	if cursor != previousCursor {
		e.maybeRefillLocked()
	}
	return nil
}

// fetch pulls pages until at least one candidate survives the filters, the
// repository runs dry or the page budget is spent. Cards come back sorted by
// compatibility, best first.
func (e *Engine) fetch(req *fetchRequest) ([]*domain.DiscoveryCard, bool, string, error) {
	query := req.query
	seen := make(map[int]struct{}, len(query.Exclude))
	for _, id := range query.Exclude {
		seen[id] = struct{}{}
	}

	var (
		cards   []*domain.DiscoveryCard
		hasMore bool
	)
	for page := 0; page < e.cfg.MaxPagesPerFetch; page++ {
		result, err := e.deps.Candidates.FetchCandidates(req.ctx, query)
		if err != nil {
			return nil, false, "", err
		}

		for _, p := range result.Profiles {
			if p == nil || p.UserID == e.viewer.UserID {
				continue
			}
			if _, dup := seen[p.UserID]; dup {
				continue
			}
			seen[p.UserID] = struct{}{}

			card := e.scoreCard(p)
			if e.deps.Evaluator.Matches(&req.filters, card) {
				cards = append(cards, card)
			}
		}

		hasMore = result.HasMore
		query.Cursor = result.NextCursor
		if len(cards) > 0 || !hasMore {
			break
		}
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CompatibilityScore > cards[j].CompatibilityScore
	})
	return cards, hasMore, query.Cursor, nil
}

func (e *Engine) scoreCard(p *domain.UserProfile) *domain.DiscoveryCard {
	distance := e.viewer.DistanceTo(p)
	breakdown := e.deps.Scorer.Score(e.viewer, p, distance)
	metrics.RecordCompatibilityScore(breakdown.Overall)

	return &domain.DiscoveryCard{
		Profile:            p,
		CompatibilityScore: int(math.Round(breakdown.Overall)),
		Breakdown:          breakdown,
		DistanceKm:         distance,
	}
}

// maybeRefillLocked starts a background append when the deck is close to its
// end and the repository has more.
func (e *Engine) maybeRefillLocked() {
	if e.closed || e.loading || !e.deck.NeedsRefill() {
		return
	}
	req := e.beginFetchLocked(e.sessionCtx, false)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.runFetch(req); err != nil {
			e.logger.Debug("background refill failed", zap.Error(err))
		}
	}()
}

// reconcileLocked queues the write-through of a swipe. Writes reach storage
// in the order the swipes were applied. A mutual like found in storage is
// applied only while the session is on the same generation.
func (e *Engine) reconcileLocked(candidateID int, action domain.SwipeAction, res *swipe.Result) {
	rec := e.deps.Reconciler
	if rec == nil {
		return
	}

	record := domain.Swipe{
		SwiperID:  e.viewer.UserID,
		SwipedID:  candidateID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	local := res.MutualMatch
	gen := e.generation

	e.enqueueWrite(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		mutual, err := rec.Reconcile(ctx, record)
		if err != nil {
			e.logger.Warn("swipe reconciliation failed", zap.Int("candidate_id", candidateID), zap.Error(err))
			return
		}
		if local != nil {
			if err := rec.SaveMutualMatch(ctx, local); err != nil {
				e.logger.Warn("failed to persist mutual match", zap.String("match_id", local.ID), zap.Error(err))
			}
			return
		}
		if !mutual {
			return
		}

		e.mu.Lock()
		if gen != e.generation || e.closed {
			e.mu.Unlock()
			metrics.RecordStaleResponse()
			return
		}
		mm, ok := e.deps.Processor.ConfirmMutual(e.viewer, e.deck, candidateID)
		e.mu.Unlock()

		if ok {
			if err := rec.SaveMutualMatch(ctx, mm); err != nil {
				e.logger.Warn("failed to persist mutual match", zap.String("match_id", mm.ID), zap.Error(err))
			}
		}
	})
}

func (e *Engine) enqueueWrite(job func()) {
	e.writesMu.Lock()
	defer e.writesMu.Unlock()

	e.writes = append(e.writes, job)
	if e.writing {
		return
	}
	e.writing = true
	e.wg.Add(1)
	go e.drainWrites()
}

func (e *Engine) drainWrites() {
	defer e.wg.Done()
	for {
		e.writesMu.Lock()
		if len(e.writes) == 0 {
			e.writing = false
			e.writesMu.Unlock()
			return
		}
		job := e.writes[0]
		e.writes[0] = nil
		e.writes = e.writes[1:]
		e.writesMu.Unlock()

		job()
	}
}
