package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/roomly-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validationErr *domain.ValidationError
		fetchErr      *domain.FetchError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: validationErr.Fields})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to fetch candidates"})
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
	case errors.Is(err, domain.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
	case errors.Is(err, domain.ErrProfileAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "profile already exists"})
	case errors.Is(err, domain.ErrInvalidCard):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidSwipeAction),
		errors.Is(err, domain.ErrCannotSwipeSelf),
		errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "discovery session closed, retry"})
	case errors.Is(err, domain.ErrNotMatchParticipant):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	case errors.Is(err, domain.ErrIcebreakersUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "icebreakers unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func currentUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	return v.(int), true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}
