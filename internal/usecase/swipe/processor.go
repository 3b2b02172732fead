package swipe

import (
	"context"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/roomly-backend/internal/usecase/deck"
)

// Processor applies swipe decisions to a deck and the match ledger. Callers
// serialize swipes per viewer.
type Processor struct {
	ledger *Ledger
	lookup ReciprocalLookup
	logger *zap.Logger
}

func NewProcessor(ledger *Ledger, lookup ReciprocalLookup, logger *zap.Logger) *Processor {
	if lookup == nil {
		lookup = ledger
	}
	return &Processor{
		ledger: ledger,
		lookup: lookup,
		logger: logger,
	}
}

// Result is the outcome of a swipe. Card is a snapshot taken after the flags
// were updated.
type Result struct {
	Card        domain.DiscoveryCard `json:"card"`
	Match       *domain.Match        `json:"match,omitempty"`
	MutualMatch *domain.MutualMatch  `json:"mutual_match,omitempty"`
}

func (r *Result) IsMutual() bool {
	return r.MutualMatch != nil
}

// Swipe records viewer's action on the card of candidateID. The deck is not
// advanced.
func (p *Processor) Swipe(
	ctx context.Context,
	viewer *domain.UserProfile,
	d *deck.Deck,
	candidateID int,
	action domain.SwipeAction,
) (*Result, error) {
	if !action.Valid() {
		return nil, domain.ErrInvalidSwipeAction
	}
	if candidateID == viewer.UserID {
		return nil, domain.ErrCannotSwipeSelf
	}

	card, ok := d.Find(candidateID)
	if !ok {
		p.logger.Warn("swipe on card outside the deck",
			zap.Int("viewer_id", viewer.UserID),
			zap.Int("candidate_id", candidateID),
			zap.String("action", string(action)),
		)
		return nil, &domain.InvalidCardError{CandidateID: candidateID}
	}

	card.ApplyAction(action)
	metrics.RecordSwipe(string(action))

	result := &Result{}
	if action.IsPositive() {
		match, created := p.ledger.Record(viewer.UserID, candidateID, action, card.CompatibilityScore)
		if created {
			metrics.RecordMatch()
		}

		liked, err := p.lookup.HasLikedMe(ctx, viewer.UserID, candidateID)
		if err != nil {
			// The swipe stands; reconciliation may still find the mutual like.
			p.logger.Warn("reciprocal lookup failed",
				zap.Int("viewer_id", viewer.UserID),
				zap.Int("candidate_id", candidateID),
				zap.Error(err),
			)
		} else if liked {
			result.MutualMatch = p.markMutual(viewer, card)
			match, _ = p.ledger.Match(viewer.UserID, candidateID)
		}
		result.Match = &match
	} else {
		p.ledger.Withdraw(viewer.UserID, candidateID)
	}

	result.Card = *card
	return result, nil
}

// ConfirmMutual turns a like into a mutual match after reconciliation found
// the counterpart like. It does nothing when the card is gone or the viewer
// no longer likes the candidate.
func (p *Processor) ConfirmMutual(viewer *domain.UserProfile, d *deck.Deck, candidateID int) (*domain.MutualMatch, bool) {
	card, ok := d.Find(candidateID)
	if !ok || !card.IsLiked {
		return nil, false
	}
	if m, ok := p.ledger.Match(viewer.UserID, candidateID); !ok || !m.MatchType.IsPositive() {
		return nil, false
	}
	mm := p.markMutual(viewer, card)
	return mm, mm != nil
}

// markMutual returns nil when the pair was unmatched earlier; an ended match
// is not revived by new likes.
func (p *Processor) markMutual(viewer *domain.UserProfile, card *domain.DiscoveryCard) *domain.MutualMatch {
	mm, created := p.ledger.MarkMutual(viewer, card.Profile, card.CompatibilityScore)
	if created {
		metrics.RecordMutualMatch()
		p.logger.Info("mutual match created",
			zap.String("match_id", mm.ID),
			zap.Int("user1_id", mm.User1.UserID),
			zap.Int("user2_id", mm.User2.UserID),
			zap.Int("compatibility_score", mm.CompatibilityScore),
		)
	}
	if !mm.IsActive {
		return nil
	}
	return &mm
}
