package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/usecase/feed"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

type DiscoveryHandler struct {
	sessions *feed.SessionManager
}

func NewDiscoveryHandler(sessions *feed.SessionManager) *DiscoveryHandler {
	return &DiscoveryHandler{
		sessions: sessions,
	}
}

// SwipeRequest represents a swipe. Without candidate_id the current card is
// swiped.
type SwipeRequest struct {
	CandidateID *int               `json:"candidate_id"`
	Action      domain.SwipeAction `json:"action" binding:"required"`
}

// SwipeResponse is the swipe outcome plus the session state after it.
type SwipeResponse struct {
	*swipe.Result
	State feed.Snapshot `json:"state"`
}

// SearchRequest represents search query update
type SearchRequest struct {
	Query string `json:"query"`
}

// GetDiscovery handles GET /discovery
// @Summary Discovery state
// @Description Open the viewer's session when needed and return its state
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} feed.Snapshot
// @Router /discovery [get]
func (h *DiscoveryHandler) GetDiscovery(c *gin.Context) {
	engine, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.State())
}

// Swipe handles POST /discovery/swipe
// @Summary Swipe a card
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SwipeRequest true "Swipe"
// @Success 200 {object} SwipeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /discovery/swipe [post]
func (h *DiscoveryHandler) Swipe(c *gin.Context) {
	var req SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	engine, ok := h.session(c)
	if !ok {
		return
	}

	var (
		res *swipe.Result
		err error
	)
	if req.CandidateID != nil {
		res, err = engine.Swipe(c.Request.Context(), *req.CandidateID, req.Action)
	} else {
		res, err = engine.SwipeCurrent(c.Request.Context(), req.Action)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SwipeResponse{Result: res, State: engine.State()})
}

// LoadMore handles POST /discovery/load-more
func (h *DiscoveryHandler) LoadMore(c *gin.Context) {
	h.run(c, func(e *feed.Engine) error {
		return e.LoadMore(c.Request.Context())
	})
}

// Reload handles POST /discovery/reload
func (h *DiscoveryHandler) Reload(c *gin.Context) {
	h.run(c, func(e *feed.Engine) error {
		return e.Reload(c.Request.Context())
	})
}

// UpdateFilters handles PATCH /discovery/filters
// @Summary Update discovery filters
// @Description Merge the given fields into the active filters and reload
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.FiltersPatch true "Filter changes"
// @Success 200 {object} feed.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /discovery/filters [patch]
func (h *DiscoveryHandler) UpdateFilters(c *gin.Context) {
	var patch domain.FiltersPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	h.run(c, func(e *feed.Engine) error {
		return e.SetFilters(c.Request.Context(), patch)
	})
}

// ResetFilters handles DELETE /discovery/filters
func (h *DiscoveryHandler) ResetFilters(c *gin.Context) {
	h.run(c, func(e *feed.Engine) error {
		return e.ResetFilters(c.Request.Context())
	})
}

// UpdateSearch handles PUT /discovery/search
func (h *DiscoveryHandler) UpdateSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	h.run(c, func(e *feed.Engine) error {
		return e.SetSearchQuery(c.Request.Context(), req.Query)
	})
}

// Leave handles DELETE /discovery
func (h *DiscoveryHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.sessions.Leave(userID)
	c.Status(http.StatusNoContent)
}

func (h *DiscoveryHandler) session(c *gin.Context) (*feed.Engine, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	engine, err := h.sessions.Session(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return engine, true
}

// run applies op and answers with the resulting state. Fetch failures are
// part of the state, not a failed request.
func (h *DiscoveryHandler) run(c *gin.Context, op func(e *feed.Engine) error) {
	engine, ok := h.session(c)
	if !ok {
		return
	}

	if err := op(engine); err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			respondError(c, err)
			return
		}
		_ = c.Error(err)
	}

	c.JSON(http.StatusOK, engine.State())
}
