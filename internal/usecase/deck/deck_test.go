package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

func cards(ids ...int) []*domain.DiscoveryCard {
	out := make([]*domain.DiscoveryCard, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.DiscoveryCard{Profile: &domain.UserProfile{UserID: id}})
	}
	return out
}

func TestDeck_Empty(t *testing.T) {
	d := New(DefaultLowWatermark)

	assert.Nil(t, d.Current())
	assert.Equal(t, 0, d.Advance())
	assert.Equal(t, StateEmpty, d.State())
	assert.False(t, d.NeedsRefill())
}

func TestDeck_AdvanceClamps(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2, 3, 4, 5), false)

	for i := 0; i < 4; i++ {
		d.Advance()
	}
	assert.Equal(t, 4, d.CurrentIndex())

	d.Advance()
	assert.Equal(t, 4, d.CurrentIndex())
	assert.Equal(t, 5, d.Current().CandidateID())
}

func TestDeck_IndexInvariant(t *testing.T) {
	for n := 0; n <= 6; n++ {
		d := New(DefaultLowWatermark)
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}
		d.Load(cards(ids...), false)

		for i := 0; i < 10; i++ {
			d.Advance()
			assert.GreaterOrEqual(t, d.CurrentIndex(), 0)
			assert.LessOrEqual(t, d.CurrentIndex(), max(0, d.Len()-1))
		}
	}
}

func TestDeck_LoadResets(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2, 3), true)
	d.Advance()
	d.SetError("boom")

	d.Load(cards(7, 8), false)

	assert.Equal(t, 0, d.CurrentIndex())
	assert.Equal(t, []int{7, 8}, d.CandidateIDs())
	assert.Empty(t, d.Err())
	assert.False(t, d.HasMore())
	_, found := d.Find(1)
	assert.False(t, found)
}

func TestDeck_AppendKeepsIndexAndDedupes(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2, 3), true)
	d.Advance()

	added := d.Append(cards(3, 4, 5), false)

	assert.Equal(t, 2, added)
	assert.Equal(t, 1, d.CurrentIndex())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, d.CandidateIDs())
	assert.False(t, d.HasMore())
}

func TestDeck_AppendMovesPastSwipedLastCard(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2), true)
	d.Advance()
	d.Current().ApplyAction(domain.SwipeLike)
	d.Advance()
	require.Equal(t, 1, d.CurrentIndex())

	d.Append(cards(3, 4), false)

	assert.Equal(t, 2, d.CurrentIndex())
	assert.Equal(t, 3, d.Current().CandidateID())
}

func TestDeck_NeedsRefill(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2, 3, 4, 5, 6), true)

	assert.False(t, d.NeedsRefill())
	d.Advance()
	d.Advance()
	assert.False(t, d.NeedsRefill())
	d.Advance()
	assert.True(t, d.NeedsRefill())

	d.Append(nil, false)
	assert.False(t, d.NeedsRefill())
}

func TestDeck_NeedsRefillOnEmptyDeckWithMore(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(nil, true)

	assert.True(t, d.NeedsRefill())
}

func TestDeck_ErrorKeepsState(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2, 3), true)
	d.Advance()

	d.SetError("failed to fetch candidates")

	assert.Equal(t, "failed to fetch candidates", d.Err())
	assert.Equal(t, 1, d.CurrentIndex())
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.HasMore())
}

func TestDeck_States(t *testing.T) {
	d := New(DefaultLowWatermark)
	d.Load(cards(1, 2), false)
	assert.Equal(t, StatePopulated, d.State())

	d.Current().ApplyAction(domain.SwipePass)
	d.Advance()
	assert.Equal(t, StatePopulated, d.State())

	d.Current().ApplyAction(domain.SwipeLike)
	d.Advance()
	assert.Equal(t, StateExhausted, d.State())
	assert.Equal(t, "exhausted", d.State().String())

	d.Reset()
	assert.Equal(t, StateEmpty, d.State())
}
