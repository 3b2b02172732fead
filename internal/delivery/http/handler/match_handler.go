package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/roomly-backend/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
}

func NewMatchHandler(matchUseCase *match.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

// ListMatches handles GET /matches
// @Summary List mutual matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.MutualMatch
// @Router /matches [get]
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matches, err := h.matchUseCase.ListMatches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// Unmatch handles POST /matches/:id/unmatch
// @Summary Unmatch
// @Tags matches
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{id}/unmatch [post]
func (h *MatchHandler) Unmatch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.matchUseCase.Unmatch(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "unmatched"})
}

// Icebreakers handles GET /matches/:id/icebreakers
// @Summary Conversation openers
// @Tags matches
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 200 {object} match.IcebreakersResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{id}/icebreakers [get]
func (h *MatchHandler) Icebreakers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.matchUseCase.Icebreakers(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TouchLastMessage handles POST /matches/:id/messages/touch, the hook the
// messaging service calls after delivering a message.
func (h *MatchHandler) TouchLastMessage(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	if err := h.matchUseCase.TouchLastMessage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
