package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

// IcebreakerGenerator suggests openers a could send to b.
type IcebreakerGenerator interface {
	Icebreakers(ctx context.Context, a, b *domain.UserProfile) ([]string, error)
}

// MatchUseCase serves mutual matches. Matches made in this process live in
// the ledger until reconciliation stores them, so reads merge both.
type MatchUseCase struct {
	ledger      *swipe.Ledger
	matchRepo   repository.MatchRepository
	profileRepo repository.ProfileRepository
	icebreakers IcebreakerGenerator
	logger      *zap.Logger
	now         func() time.Time
}

func NewMatchUseCase(
	ledger *swipe.Ledger,
	matchRepo repository.MatchRepository,
	profileRepo repository.ProfileRepository,
	icebreakers IcebreakerGenerator,
	logger *zap.Logger,
) *MatchUseCase {
	return &MatchUseCase{
		ledger:      ledger,
		matchRepo:   matchRepo,
		profileRepo: profileRepo,
		icebreakers: icebreakers,
		logger:      logger,
		now:         time.Now,
	}
}

// IcebreakersResponse represents the icebreakers for a match
type IcebreakersResponse struct {
	MatchID     string   `json:"match_id"`
	Icebreakers []string `json:"icebreakers"`
}

// ListMatches returns the active mutual matches of userID, newest first.
func (uc *MatchUseCase) ListMatches(ctx context.Context, userID int) ([]domain.MutualMatch, error) {
	stored, err := uc.matchRepo.GetActiveMatches(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	seen := make(map[[2]int]struct{}, len(stored))
	matches := make([]domain.MutualMatch, 0, len(stored))
	for _, m := range stored {
		seen[[2]int{m.User1.UserID, m.User2.UserID}] = struct{}{}
		// A late write-through may still carry the pre-unmatch state.
		if local, err := uc.ledger.MutualMatch(m.ID); err == nil && !local.IsActive {
			continue
		}
		matches = append(matches, *m)
	}
	for _, m := range uc.ledger.MutualMatches(userID) {
		if _, ok := seen[[2]int{m.User1.UserID, m.User2.UserID}]; ok {
			continue
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// Unmatch deactivates the match for both users.
func (uc *MatchUseCase) Unmatch(ctx context.Context, userID int, matchID string) error {
	m, err := uc.find(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.HasUser(userID) {
		return domain.ErrNotMatchParticipant
	}

	if err := uc.ledger.Deactivate(matchID, userID); err != nil && !errors.Is(err, domain.ErrMatchNotFound) {
		return err
	}
	if err := uc.matchRepo.UpdateStatus(ctx, matchID, false); err != nil && !errors.Is(err, domain.ErrMatchNotFound) {
		return fmt.Errorf("failed to deactivate match: %w", err)
	}

	uc.logger.Info("match deactivated",
		zap.String("match_id", matchID),
		zap.Int("user_id", userID),
	)
	return nil
}

// Icebreakers suggests openers userID could send to the other participant.
func (uc *MatchUseCase) Icebreakers(ctx context.Context, userID int, matchID string) (*IcebreakersResponse, error) {
	m, err := uc.find(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasUser(userID) {
		return nil, domain.ErrNotMatchParticipant
	}
	if !m.IsActive {
		return nil, domain.ErrMatchNotFound
	}

	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := uc.profileRepo.GetByUserID(ctx, m.GetOtherUserID(userID))
	if err != nil {
		return nil, err
	}

	lines, err := uc.icebreakers.Icebreakers(ctx, me, other)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIcebreakersUnavailable, err)
	}
	return &IcebreakersResponse{MatchID: matchID, Icebreakers: lines}, nil
}

// TouchLastMessage is called by the messaging side when a message is sent
// in the match.
func (uc *MatchUseCase) TouchLastMessage(ctx context.Context, matchID string) error {
	ledgerErr := uc.ledger.TouchLastMessage(matchID, uc.now().UTC())
	repoErr := uc.matchRepo.TouchLastMessage(ctx, matchID)

	if errors.Is(ledgerErr, domain.ErrMatchNotFound) && errors.Is(repoErr, domain.ErrMatchNotFound) {
		return domain.ErrMatchNotFound
	}
	if repoErr != nil && !errors.Is(repoErr, domain.ErrMatchNotFound) {
		return fmt.Errorf("failed to update match: %w", repoErr)
	}
	return nil
}

func (uc *MatchUseCase) find(ctx context.Context, matchID string) (*domain.MutualMatch, error) {
	if m, err := uc.ledger.MutualMatch(matchID); err == nil {
		return &m, nil
	}
	return uc.matchRepo.GetByID(ctx, matchID)
}
