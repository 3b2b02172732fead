package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/roomly-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.UserProfile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	p, err := h.profileUseCase.GetMyProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} domain.UserProfile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	updated, err := h.profileUseCase.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CompleteOnboarding handles POST /profile/complete-onboarding
// @Summary Complete onboarding
// @Description Create the profile when missing and make it discoverable
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.CreateProfileRequest false "Profile creation data"
// @Success 200 {object} domain.UserProfile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile/complete-onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req *profile.CreateProfileRequest
	var body profile.CreateProfileRequest
	if err := c.ShouldBindJSON(&body); err == nil {
		req = &body
	} else if !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	p, err := h.profileUseCase.CompleteOnboarding(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetProfileByUserID handles GET /profile/:user_id
// @Summary Get user profile
// @Description Get another user's profile with its compatibility against the viewer
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} profile.ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile/{user_id} [get]
func (h *ProfileHandler) GetProfileByUserID(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetUserID, ok := intParam(c, "user_id")
	if !ok {
		return
	}

	resp, err := h.profileUseCase.GetProfileByUserID(c.Request.Context(), targetUserID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
