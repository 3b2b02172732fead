package deck

import "github.com/gdugdh24/roomly-backend/internal/domain"

// DefaultLowWatermark is the number of remaining cards that triggers a refill.
const DefaultLowWatermark = 3

type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Deck is the ordered card sequence of one discovery session. It never
// fetches on its own; callers check NeedsRefill and append.
//
// A Deck is not safe for concurrent use.
type Deck struct {
	cards        []*domain.DiscoveryCard
	positions    map[int]int
	currentIndex int
	hasMore      bool
	err          string
	lowWatermark int
}

func New(lowWatermark int) *Deck {
	if lowWatermark <= 0 {
		lowWatermark = DefaultLowWatermark
	}
	return &Deck{
		positions:    make(map[int]int),
		lowWatermark: lowWatermark,
	}
}

// Load replaces every card and moves back to the first one.
func (d *Deck) Load(cards []*domain.DiscoveryCard, hasMore bool) {
	d.cards = nil
	d.positions = make(map[int]int, len(cards))
	d.currentIndex = 0
	d.push(cards)
	d.hasMore = hasMore
	d.err = ""
}

// Append adds cards to the tail and keeps the current index. Cards already
// in the deck are skipped. When the last card was already swiped the deck
// moves onto the first appended card. Returns the number of cards added.
func (d *Deck) Append(cards []*domain.DiscoveryCard, hasMore bool) int {
	before := len(d.cards)
	added := d.push(cards)
	d.hasMore = hasMore
	d.err = ""

	if added > 0 && before > 0 && d.currentIndex == before-1 && d.cards[d.currentIndex].Swiped() {
		d.currentIndex = before
	}
	return added
}

func (d *Deck) push(cards []*domain.DiscoveryCard) int {
	added := 0
	for _, card := range cards {
		if card == nil || card.Profile == nil {
			continue
		}
		id := card.CandidateID()
		if _, exists := d.positions[id]; exists {
			continue
		}
		d.positions[id] = len(d.cards)
		d.cards = append(d.cards, card)
		added++
	}
	return added
}

// Current returns the card at the current index, or nil for an empty deck.
func (d *Deck) Current() *domain.DiscoveryCard {
	if len(d.cards) == 0 {
		return nil
	}
	return d.cards[d.currentIndex]
}

// Advance moves to the next card, clamped to the last one.
func (d *Deck) Advance() int {
	if d.currentIndex < len(d.cards)-1 {
		d.currentIndex++
	}
	return d.currentIndex
}

// NeedsRefill reports whether the caller should append more cards.
func (d *Deck) NeedsRefill() bool {
	if !d.hasMore {
		return false
	}
	return d.currentIndex >= len(d.cards)-d.lowWatermark
}

func (d *Deck) Find(candidateID int) (*domain.DiscoveryCard, bool) {
	i, ok := d.positions[candidateID]
	if !ok {
		return nil, false
	}
	return d.cards[i], true
}

// IsCurrent reports whether candidateID is the card at the current index.
func (d *Deck) IsCurrent(candidateID int) bool {
	cur := d.Current()
	return cur != nil && cur.CandidateID() == candidateID
}

func (d *Deck) State() State {
	if len(d.cards) == 0 {
		return StateEmpty
	}
	if !d.hasMore && d.currentIndex == len(d.cards)-1 && d.cards[d.currentIndex].Swiped() {
		return StateExhausted
	}
	return StatePopulated
}

// Cards returns the card sequence. The slice is a copy; cards are shared.
func (d *Deck) Cards() []*domain.DiscoveryCard {
	out := make([]*domain.DiscoveryCard, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Deck) CandidateIDs() []int {
	ids := make([]int, 0, len(d.cards))
	for _, c := range d.cards {
		ids = append(ids, c.CandidateID())
	}
	return ids
}

func (d *Deck) Len() int          { return len(d.cards) }
func (d *Deck) CurrentIndex() int { return d.currentIndex }
func (d *Deck) HasMore() bool     { return d.hasMore }
func (d *Deck) Err() string       { return d.err }

// SetError records a failure. Cards and position are left untouched.
func (d *Deck) SetError(msg string) {
	d.err = msg
}

func (d *Deck) ClearError() {
	d.err = ""
}

// Reset empties the deck.
func (d *Deck) Reset() {
	d.cards = nil
	d.positions = make(map[int]int)
	d.currentIndex = 0
	d.hasMore = false
	d.err = ""
}
