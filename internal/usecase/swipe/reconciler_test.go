package swipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

type mockSwipeRepository struct {
	mock.Mock
}

func (m *mockSwipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	args := m.Called(ctx, swipe)
	return args.Error(0)
}

func (m *mockSwipeRepository) HasLiked(ctx context.Context, swiperID, swipedID int) (bool, error) {
	args := m.Called(ctx, swiperID, swipedID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSwipeRepository) SwipedIDs(ctx context.Context, swiperID int) ([]int, error) {
	args := m.Called(ctx, swiperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

type mockMatchRepository struct {
	mock.Mock
}

func (m *mockMatchRepository) Create(ctx context.Context, match *domain.MutualMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *mockMatchRepository) GetByID(ctx context.Context, id string) (*domain.MutualMatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutualMatch), args.Error(1)
}

func (m *mockMatchRepository) GetByUsers(ctx context.Context, user1ID, user2ID int) (*domain.MutualMatch, error) {
	args := m.Called(ctx, user1ID, user2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutualMatch), args.Error(1)
}

func (m *mockMatchRepository) GetActiveMatches(ctx context.Context, userID int) ([]*domain.MutualMatch, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MutualMatch), args.Error(1)
}

func (m *mockMatchRepository) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	args := m.Called(ctx, id, isActive)
	return args.Error(0)
}

func (m *mockMatchRepository) TouchLastMessage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("pass is persisted without a mutual check", func(t *testing.T) {
		swipes := new(mockSwipeRepository)
		swipes.On("Upsert", ctx, mock.AnythingOfType("*domain.Swipe")).Return(nil)
		r := NewReconciler(swipes, new(mockMatchRepository), zap.NewNop())

		mutual, err := r.Reconcile(ctx, domain.Swipe{SwiperID: 1, SwipedID: 2, Action: domain.SwipePass})

		require.NoError(t, err)
		assert.False(t, mutual)
		swipes.AssertExpectations(t)
		swipes.AssertNotCalled(t, "HasLiked", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("like reports the counterpart like", func(t *testing.T) {
		swipes := new(mockSwipeRepository)
		swipes.On("Upsert", ctx, mock.AnythingOfType("*domain.Swipe")).Return(nil)
		swipes.On("HasLiked", ctx, 2, 1).Return(true, nil)
		r := NewReconciler(swipes, new(mockMatchRepository), zap.NewNop())

		mutual, err := r.Reconcile(ctx, domain.Swipe{SwiperID: 1, SwipedID: 2, Action: domain.SwipeLike})

		require.NoError(t, err)
		assert.True(t, mutual)
		swipes.AssertExpectations(t)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		swipes := new(mockSwipeRepository)
		swipes.On("Upsert", ctx, mock.AnythingOfType("*domain.Swipe")).Return(assert.AnError)
		r := NewReconciler(swipes, new(mockMatchRepository), zap.NewNop())

		_, err := r.Reconcile(ctx, domain.Swipe{SwiperID: 1, SwipedID: 2, Action: domain.SwipeLike})

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestReconciler_SaveMutualMatch(t *testing.T) {
	ctx := context.Background()
	mm := &domain.MutualMatch{
		ID:    "m-1",
		User1: domain.MatchParticipant{UserID: 1},
		User2: domain.MatchParticipant{UserID: 2},
	}

	t.Run("creates when missing", func(t *testing.T) {
		matches := new(mockMatchRepository)
		matches.On("GetByUsers", ctx, 1, 2).Return(nil, domain.ErrMatchNotFound)
		matches.On("Create", ctx, mm).Return(nil)
		r := NewReconciler(new(mockSwipeRepository), matches, zap.NewNop())

		require.NoError(t, r.SaveMutualMatch(ctx, mm))
		matches.AssertExpectations(t)
	})

	t.Run("skips existing pair", func(t *testing.T) {
		matches := new(mockMatchRepository)
		matches.On("GetByUsers", ctx, 1, 2).Return(mm, nil)
		r := NewReconciler(new(mockSwipeRepository), matches, zap.NewNop())

		require.NoError(t, r.SaveMutualMatch(ctx, mm))
		matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
