package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/config"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/roomly-backend/internal/repository/memory"
	"github.com/gdugdh24/roomly-backend/internal/usecase/auth"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/roomly-backend/internal/usecase/feed"
	"github.com/gdugdh24/roomly-backend/internal/usecase/filter"
	"github.com/gdugdh24/roomly-backend/internal/usecase/match"
	"github.com/gdugdh24/roomly-backend/internal/usecase/profile"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

type testApp struct {
	engine   *gin.Engine
	sessions *feed.SessionManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	ctx := context.Background()

	swipes := memory.NewSwipeRepository()
	profiles := memory.NewProfileRepository(swipes, 0)
	matches := memory.NewMatchRepository()
	for id, name := range map[int]string{1: "Anna", 2: "Ben", 3: "Clara"} {
		require.NoError(t, profiles.Create(ctx, &domain.UserProfile{
			UserID:               id,
			DisplayName:          name,
			Interests:            []string{"jazz"},
			IsOnboardingComplete: true,
		}))
	}

	scorer, err := compatibility.NewScorer(compatibility.DefaultConfig())
	require.NoError(t, err)
	ledger := swipe.NewLedger()
	processor := swipe.NewProcessor(ledger, swipe.ChainLookup{ledger, swipe.NewRepositoryLookup(swipes)}, logger)
	sessions := feed.NewSessionManager(
		profiles, profiles, memory.NewPreferenceStore(), scorer,
		filter.NewEvaluator(time.Now), processor,
		swipe.NewReconciler(swipes, matches, logger),
		feed.DefaultConfig(), logger,
	)
	t.Cleanup(sessions.Shutdown)

	ice, err := gemini.NewClient(config.GeminiConfig{}, logger)
	require.NoError(t, err)

	tokens := auth.NewTokenUseCase("0123456789abcdef0123456789abcdef", time.Hour)
	router := NewRouter(
		handler.NewAuthHandler(tokens),
		handler.NewProfileHandler(profile.NewProfileUseCase(profiles, sessions, logger)),
		handler.NewDiscoveryHandler(sessions),
		handler.NewMatchHandler(match.NewMatchUseCase(ledger, matches, profiles, ice, logger)),
		middleware.NewAuthMiddleware(tokens),
		logger,
		true,
	)
	return &testApp{engine: router.Setup(), sessions: sessions}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) token(t *testing.T, userID int) string {
	t.Helper()
	w := a.do(t, nethttp.MethodPost, "/api/v1/auth/token", "", gin.H{"user_id": userID})
	require.Equal(t, nethttp.StatusOK, w.Code)
	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

// wait lets background reconciliation of the given sessions finish.
func (a *testApp) wait(viewerIDs ...int) {
	for _, id := range viewerIDs {
		if e, ok := a.sessions.Get(id); ok {
			e.Wait()
		}
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, nethttp.MethodGet, "/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w = app.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestRouter_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, nethttp.MethodGet, "/api/v1/discovery", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestRouter_DiscoveryExcludesViewer(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, 1)

	w := app.do(t, nethttp.MethodGet, "/api/v1/discovery", token, nil)

	require.Equal(t, nethttp.StatusOK, w.Code)
	state := decode[feed.Snapshot](t, w)
	require.Len(t, state.Cards, 2)
	for _, card := range state.Cards {
		assert.NotEqual(t, 1, card.Profile.UserID)
	}
	require.NotNil(t, state.CurrentCard)
	assert.Equal(t, 0, state.CurrentIndex)
}

func TestRouter_SwipeErrors(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, 1)

	w := app.do(t, nethttp.MethodPost, "/api/v1/discovery/swipe", token, gin.H{"candidate_id": 2, "action": "maybe"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = app.do(t, nethttp.MethodPost, "/api/v1/discovery/swipe", token, gin.H{"candidate_id": 99, "action": "like"})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, w.Code)
}

func TestRouter_MutualMatchFlow(t *testing.T) {
	app := newTestApp(t)
	anna, ben := app.token(t, 1), app.token(t, 2)

	w := app.do(t, nethttp.MethodPost, "/api/v1/discovery/swipe", ben, gin.H{"candidate_id": 1, "action": "like"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	first := decode[handler.SwipeResponse](t, w)
	assert.Nil(t, first.MutualMatch)

	w = app.do(t, nethttp.MethodPost, "/api/v1/discovery/swipe", anna, gin.H{"candidate_id": 2, "action": "super_like"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	second := decode[handler.SwipeResponse](t, w)
	require.NotNil(t, second.MutualMatch)
	assert.True(t, second.Card.IsSuperLiked)
	matchID := second.MutualMatch.ID
	app.wait(1, 2)

	w = app.do(t, nethttp.MethodGet, "/api/v1/matches", ben, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	listed := decode[struct {
		Matches []domain.MutualMatch `json:"matches"`
	}](t, w)
	require.Len(t, listed.Matches, 1)
	assert.Equal(t, matchID, listed.Matches[0].ID)

	w = app.do(t, nethttp.MethodGet, "/api/v1/matches/"+matchID+"/icebreakers", anna, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	ice := decode[match.IcebreakersResponse](t, w)
	assert.Len(t, ice.Icebreakers, 3)

	clara := app.token(t, 3)
	w = app.do(t, nethttp.MethodPost, "/api/v1/matches/"+matchID+"/unmatch", clara, nil)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)

	w = app.do(t, nethttp.MethodPost, "/api/v1/matches/"+matchID+"/unmatch", anna, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)

	w = app.do(t, nethttp.MethodGet, "/api/v1/matches", ben, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	listed = decode[struct {
		Matches []domain.MutualMatch `json:"matches"`
	}](t, w)
	assert.Empty(t, listed.Matches)
}

func TestRouter_FiltersValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, 1)

	w := app.do(t, nethttp.MethodPatch, "/api/v1/discovery/filters", token, gin.H{
		"age_range": gin.H{"min": 40, "max": 20},
	})
	require.Equal(t, nethttp.StatusBadRequest, w.Code)
	resp := decode[handler.ErrorResponse](t, w)
	assert.NotEmpty(t, resp.Fields)

	w = app.do(t, nethttp.MethodPatch, "/api/v1/discovery/filters", token, gin.H{"is_verified": true})
	require.Equal(t, nethttp.StatusOK, w.Code)
	state := decode[feed.Snapshot](t, w)
	assert.True(t, state.Filters.IsVerified)
	assert.Empty(t, state.Cards)

	w = app.do(t, nethttp.MethodDelete, "/api/v1/discovery/filters", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	state = decode[feed.Snapshot](t, w)
	assert.Len(t, state.Cards, 2)
}

func TestRouter_ProfileOnboarding(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, 10)

	w := app.do(t, nethttp.MethodGet, "/api/v1/profile/me", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w = app.do(t, nethttp.MethodPost, "/api/v1/profile/complete-onboarding", token, gin.H{"display_name": "Dora"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	p := decode[domain.UserProfile](t, w)
	assert.True(t, p.IsOnboardingComplete)

	w = app.do(t, nethttp.MethodGet, "/api/v1/profile/1", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	other := decode[profile.ProfileResponse](t, w)
	assert.NotNil(t, other.Compatibility)

	w = app.do(t, nethttp.MethodGet, "/api/v1/profile/abc", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}
