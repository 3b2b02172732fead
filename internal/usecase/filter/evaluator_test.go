package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func born(years int) *time.Time {
	d := now.AddDate(-years, 0, -1)
	return &d
}

func distance(km float64) *float64 { return &km }

func pool() []*domain.DiscoveryCard {
	return []*domain.DiscoveryCard{
		{
			Profile: &domain.UserProfile{
				UserID:       1,
				Gender:       domain.GenderFemale,
				DateOfBirth:  born(24),
				Budget:       domain.IntRange{Min: 800, Max: 1200},
				HousingTypes: []domain.HousingType{domain.HousingApartment},
				Lifestyle:    domain.Lifestyle{Cleanliness: domain.CleanlinessClean, SleepSchedule: domain.SleepEarlyBird},
				Interests:    []string{"yoga", "cooking"},
				Photos:       []string{"a.jpg"},
				IsVerified:   true,
			},
			CompatibilityScore: 82,
			DistanceKm:         distance(3),
		},
		{
			Profile: &domain.UserProfile{
				UserID:       2,
				Gender:       domain.GenderMale,
				DateOfBirth:  born(31),
				Budget:       domain.IntRange{Min: 1500, Max: 2200},
				HousingTypes: []domain.HousingType{domain.HousingRoom, domain.HousingStudio},
				Lifestyle:    domain.Lifestyle{Cleanliness: domain.CleanlinessRelaxed, Smoking: true, Parties: true},
				Interests:    []string{"gaming"},
			},
			CompatibilityScore: 45,
			DistanceKm:         distance(18),
		},
		{
			Profile: &domain.UserProfile{
				UserID:      3,
				Gender:      domain.GenderNonBinary,
				DateOfBirth: born(27),
				Budget:      domain.IntRange{Min: 1000, Max: 1600},
				Lifestyle:   domain.Lifestyle{Cleanliness: domain.CleanlinessVeryClean, Pets: true},
				Photos:      []string{"b.jpg", "c.jpg"},
			},
			CompatibilityScore: 67,
		},
		{
			Profile:            &domain.UserProfile{UserID: 4},
			CompatibilityScore: 10,
		},
	}
}

func ids(cards []*domain.DiscoveryCard) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.CandidateID())
	}
	return out
}

func TestEvaluator_EmptyFiltersAdmitEverything(t *testing.T) {
	e := NewEvaluator(func() time.Time { return now })

	got := e.Apply(&domain.DiscoveryFilters{}, pool())

	assert.Equal(t, []int{1, 2, 3, 4}, ids(got))
}

func TestEvaluator_Clauses(t *testing.T) {
	e := NewEvaluator(func() time.Time { return now })

	tests := []struct {
		name    string
		filters domain.DiscoveryFilters
		want    []int
	}{
		{"age range inclusive", domain.DiscoveryFilters{AgeRange: domain.IntRange{Min: 24, Max: 27}}, []int{1, 3}},
		{"budget intersection", domain.DiscoveryFilters{BudgetRange: domain.IntRange{Min: 1300, Max: 1500}}, []int{2, 3}},
		{"distance with unknown passing", domain.DiscoveryFilters{MaxDistanceKm: 10}, []int{1, 3, 4}},
		{"gender set", domain.DiscoveryFilters{Genders: []domain.Gender{domain.GenderFemale, domain.GenderNonBinary}}, []int{1, 3}},
		{"housing overlap", domain.DiscoveryFilters{HousingTypes: []domain.HousingType{domain.HousingStudio}}, []int{2}},
		{"lifestyle set", domain.DiscoveryFilters{Lifestyle: domain.LifestylePreferences{
			Cleanliness: []domain.Cleanliness{domain.CleanlinessClean, domain.CleanlinessVeryClean},
		}}, []int{1, 3}},
		{"deal breakers", domain.DiscoveryFilters{DealBreakers: domain.DealBreakers{Smoking: true, Pets: true}}, []int{1, 4}},
		{"required interests", domain.DiscoveryFilters{Interests: []string{"Cooking", "gaming"}}, []int{1, 2}},
		{"has photos", domain.DiscoveryFilters{HasPhotos: true}, []int{1, 3}},
		{"verified", domain.DiscoveryFilters{IsVerified: true}, []int{1}},
		{"min score", domain.DiscoveryFilters{MinCompatibilityScore: 67}, []int{1, 3}},
		{"combined", domain.DiscoveryFilters{HasPhotos: true, MinCompatibilityScore: 70}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(&tt.filters, pool())
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestEvaluator_TighteningNeverAdmitsMore(t *testing.T) {
	e := NewEvaluator(func() time.Time { return now })

	steps := []domain.DiscoveryFilters{
		{},
		{AgeRange: domain.IntRange{Min: 18, Max: 40}},
		{AgeRange: domain.IntRange{Min: 22, Max: 30}},
		{AgeRange: domain.IntRange{Min: 22, Max: 30}, MaxDistanceKm: 20},
		{AgeRange: domain.IntRange{Min: 22, Max: 30}, MaxDistanceKm: 5},
		{AgeRange: domain.IntRange{Min: 22, Max: 30}, MaxDistanceKm: 5, MinCompatibilityScore: 70},
		{AgeRange: domain.IntRange{Min: 22, Max: 30}, MaxDistanceKm: 5, MinCompatibilityScore: 90},
	}

	prev := len(pool()) + 1
	for _, f := range steps {
		f := f
		n := len(e.Apply(&f, pool()))
		assert.LessOrEqual(t, n, prev)
		prev = n
	}
}

func TestEvaluator_OrderIndependent(t *testing.T) {
	e := NewEvaluator(func() time.Time { return now })
	f := &domain.DiscoveryFilters{HasPhotos: true, Genders: []domain.Gender{domain.GenderNonBinary}}

	cards := pool()
	reversed := make([]*domain.DiscoveryCard, len(cards))
	for i, c := range cards {
		reversed[len(cards)-1-i] = c
	}

	assert.ElementsMatch(t, ids(e.Apply(f, cards)), ids(e.Apply(f, reversed)))
}

func TestValidate(t *testing.T) {
	t.Run("valid filters", func(t *testing.T) {
		f := &domain.DiscoveryFilters{
			AgeRange:              domain.IntRange{Min: 20, Max: 35},
			BudgetRange:           domain.IntRange{Min: 500},
			Genders:               []domain.Gender{domain.GenderFemale},
			MinCompatibilityScore: 60,
		}
		assert.NoError(t, Validate(f))
	})

	t.Run("min greater than max", func(t *testing.T) {
		err := Validate(&domain.DiscoveryFilters{AgeRange: domain.IntRange{Min: 40, Max: 30}})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "age_range.max", verr.Fields[0].Field)
	})

	t.Run("score out of bounds", func(t *testing.T) {
		err := Validate(&domain.DiscoveryFilters{MinCompatibilityScore: 120})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown gender", func(t *testing.T) {
		err := Validate(&domain.DiscoveryFilters{Genders: []domain.Gender{"robot"}})
		assert.Error(t, err)
	})
}
