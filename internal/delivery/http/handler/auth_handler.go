package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/roomly-backend/internal/usecase/auth"
)

type AuthHandler struct {
	authUseCase *auth.TokenUseCase
}

func NewAuthHandler(authUseCase *auth.TokenUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// TokenRequest represents development token request
type TokenRequest struct {
	UserID int `json:"user_id" binding:"required,gt=0"`
}

// IssueToken handles POST /auth/token
// @Summary Issue development token
// @Description Issue an access token for a user id. Not exposed in production.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "User id"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	resp, err := h.authUseCase.IssueToken(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}
