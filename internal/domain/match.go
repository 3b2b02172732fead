package domain

import "time"

type SwipeAction string

const (
	SwipeLike      SwipeAction = "like"
	SwipePass      SwipeAction = "pass"
	SwipeSuperLike SwipeAction = "super_like"
)

func (a SwipeAction) Valid() bool {
	switch a {
	case SwipeLike, SwipePass, SwipeSuperLike:
		return true
	}
	return false
}

// IsPositive reports whether the action expresses interest.
func (a SwipeAction) IsPositive() bool {
	return a == SwipeLike || a == SwipeSuperLike
}

// Swipe is a persisted swipe decision.
type Swipe struct {
	SwiperID  int         `json:"swiper_id" db:"swiper_id"`
	SwipedID  int         `json:"swiped_id" db:"swiped_id"`
	Action    SwipeAction `json:"action" db:"action"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Match is a one-directional like or super like from viewer to candidate.
type Match struct {
	ID                 string      `json:"id"`
	ViewerID           int         `json:"viewer_id"`
	CandidateID        int         `json:"candidate_id"`
	MatchType          SwipeAction `json:"match_type"`
	IsMutual           bool        `json:"is_mutual"`
	CompatibilityScore int         `json:"compatibility_score"`
	CreatedAt          time.Time   `json:"created_at"`
}

type MatchParticipant struct {
	UserID      int    `json:"user_id" db:"user_id"`
	DisplayName string `json:"display_name" db:"display_name"`
	Photo       string `json:"photo,omitempty" db:"photo"`
}

// MutualMatch exists once per unordered pair of users who liked each other.
// User1 always holds the smaller user id.
type MutualMatch struct {
	ID                 string           `json:"id"`
	User1              MatchParticipant `json:"user1"`
	User2              MatchParticipant `json:"user2"`
	CompatibilityScore int              `json:"compatibility_score"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	LastMessageAt      *time.Time       `json:"last_message_at,omitempty"`
}

// HasUser checks if user is part of this match
func (m *MutualMatch) HasUser(userID int) bool {
	return m.User1.UserID == userID || m.User2.UserID == userID
}

// GetOtherUserID returns the ID of the other user in the match
func (m *MutualMatch) GetOtherUserID(userID int) int {
	if m.User1.UserID == userID {
		return m.User2.UserID
	}
	return m.User1.UserID
}

// OrderedPair returns the two ids with the smaller first.
func OrderedPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
