package feed

import (
	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// Snapshot is the observable state of a discovery session. Cards are copies;
// profiles are shared and must not be modified.
type Snapshot struct {
	CurrentCard  *domain.DiscoveryCard   `json:"current_card"`
	Cards        []domain.DiscoveryCard  `json:"cards"`
	CurrentIndex int                     `json:"current_index"`
	HasMore      bool                    `json:"has_more"`
	IsLoading    bool                    `json:"is_loading"`
	Error        *string                 `json:"error"`
	State        string                  `json:"state"`
	Filters      domain.DiscoveryFilters `json:"filters"`
	SearchQuery  string                  `json:"search_query"`
}

// State returns a snapshot of the session. CurrentCard is nil when there is
// nothing left to swipe.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	cards := e.deck.Cards()
	snap := Snapshot{
		Cards:        make([]domain.DiscoveryCard, 0, len(cards)),
		CurrentIndex: e.deck.CurrentIndex(),
		HasMore:      e.deck.HasMore(),
		IsLoading:    e.loading,
		State:        e.deck.State().String(),
		Filters:      e.filters,
		SearchQuery:  e.searchQuery,
	}
	for _, c := range cards {
		snap.Cards = append(snap.Cards, *c)
	}
	if cur := e.deck.Current(); cur != nil && !cur.Swiped() {
		card := *cur
		snap.CurrentCard = &card
	}
	if msg := e.deck.Err(); msg != "" {
		snap.Error = &msg
	}
	return snap
}
