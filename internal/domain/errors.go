package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProfileNotFound        = errors.New("profile not found")
	ErrProfileAlreadyExists   = errors.New("profile already exists")
	ErrMatchNotFound          = errors.New("match not found")
	ErrPreferencesNotFound    = errors.New("discovery preferences not found")
	ErrInvalidCard            = errors.New("card is not in the current deck")
	ErrInvalidSwipeAction     = errors.New("invalid swipe action")
	ErrCannotSwipeSelf        = errors.New("cannot swipe yourself")
	ErrSessionClosed          = errors.New("discovery session closed")
	ErrNotMatchParticipant    = errors.New("user is not part of this match")
	ErrInvalidToken           = errors.New("invalid token")
	ErrInvalidInput           = errors.New("invalid input")
	ErrIcebreakersUnavailable = errors.New("icebreakers unavailable")
)

// FetchError wraps a candidate repository failure. The deck keeps its state
// and the viewer may retry.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch candidates: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidCardError is returned when a swipe references a card that is not in
// the viewer's deck.
type InvalidCardError struct {
	CandidateID int
}

func (e *InvalidCardError) Error() string {
	return fmt.Sprintf("card for user %d is not in the current deck", e.CandidateID)
}

func (e *InvalidCardError) Unwrap() error {
	return ErrInvalidCard
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a malformed filter or request. Nothing is applied.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
