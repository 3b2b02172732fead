package filter

import (
	"strings"
	"time"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// Evaluator applies discovery filters to scored cards. Every clause is an
// AND; the zero filter set admits every card.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now}
}

type clause func(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, now time.Time) bool

var clauses = []clause{
	matchesAge,
	matchesBudget,
	matchesDistance,
	matchesGender,
	matchesHousing,
	matchesLifestyle,
	matchesDealBreakers,
	matchesInterests,
	matchesPhotos,
	matchesVerified,
	matchesScore,
}

// Matches reports whether card passes every clause of f.
func (e *Evaluator) Matches(f *domain.DiscoveryFilters, card *domain.DiscoveryCard) bool {
	now := e.now()
	for _, c := range clauses {
		if !c(f, card, now) {
			return false
		}
	}
	return true
}

// Apply keeps the cards admitted by f, preserving order.
func (e *Evaluator) Apply(f *domain.DiscoveryFilters, cards []*domain.DiscoveryCard) []*domain.DiscoveryCard {
	admitted := make([]*domain.DiscoveryCard, 0, len(cards))
	for _, card := range cards {
		if e.Matches(f, card) {
			admitted = append(admitted, card)
		}
	}
	return admitted
}

func matchesAge(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, now time.Time) bool {
	if f.AgeRange.IsZero() {
		return true
	}
	age, ok := card.Profile.Age(now)
	if !ok {
		return false
	}
	return f.AgeRange.Contains(age)
}

func matchesBudget(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	if f.BudgetRange.IsZero() {
		return true
	}
	if card.Profile.Budget.IsZero() {
		return false
	}
	return f.BudgetRange.Overlaps(card.Profile.Budget)
}

// Unknown distances pass.
func matchesDistance(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	if f.MaxDistanceKm <= 0 || card.DistanceKm == nil {
		return true
	}
	return *card.DistanceKm <= f.MaxDistanceKm
}

func matchesGender(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	if len(f.Genders) == 0 {
		return true
	}
	return contains(f.Genders, card.Profile.Gender)
}

func matchesHousing(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	if len(f.HousingTypes) == 0 {
		return true
	}
	for _, h := range card.Profile.HousingTypes {
		if contains(f.HousingTypes, h) {
			return true
		}
	}
	return false
}

func matchesLifestyle(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	ls := card.Profile.Lifestyle
	if len(f.Lifestyle.Cleanliness) > 0 && !contains(f.Lifestyle.Cleanliness, ls.Cleanliness) {
		return false
	}
	if len(f.Lifestyle.SocialLevel) > 0 && !contains(f.Lifestyle.SocialLevel, ls.SocialLevel) {
		return false
	}
	if len(f.Lifestyle.SleepSchedule) > 0 && !contains(f.Lifestyle.SleepSchedule, ls.SleepSchedule) {
		return false
	}
	return true
}

func matchesDealBreakers(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	ls := card.Profile.Lifestyle
	db := f.DealBreakers
	return !(db.Smoking && ls.Smoking ||
		db.Drinking && ls.Drinking ||
		db.Pets && ls.Pets ||
		db.Parties && ls.Parties)
}

// A candidate must share at least one of the requested interests.
func matchesInterests(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	if len(f.Interests) == 0 {
		return true
	}
	for _, want := range f.Interests {
		for _, have := range card.Profile.Interests {
			if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}

func matchesPhotos(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	return !f.HasPhotos || len(card.Profile.Photos) > 0
}

func matchesVerified(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	return !f.IsVerified || card.Profile.IsVerified
}

func matchesScore(f *domain.DiscoveryFilters, card *domain.DiscoveryCard, _ time.Time) bool {
	return card.CompatibilityScore >= f.MinCompatibilityScore
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
