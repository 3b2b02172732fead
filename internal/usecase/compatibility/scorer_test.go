package compatibility

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func dob(years int) *time.Time {
	d := fixedNow.AddDate(-years, 0, -1)
	return &d
}

func fptr(v float64) *float64 { return &v }

func sptr(v string) *string { return &v }

func TestWeights(t *testing.T) {
	t.Run("defaults sum to one", func(t *testing.T) {
		w := DefaultWeights()
		assert.InDelta(t, 1.0, w.Sum(), weightEpsilon)
		assert.NoError(t, w.Validate())
	})

	t.Run("rejects weights not summing to one", func(t *testing.T) {
		w := DefaultWeights()
		w.Age = 0.10
		assert.Error(t, w.Validate())
	})

	t.Run("rejects negative weight", func(t *testing.T) {
		w := DefaultWeights()
		w.Age = -0.05
		w.Interests = 0.15
		assert.Error(t, w.Validate())
	})

	t.Run("rejects non-finite weight", func(t *testing.T) {
		w := DefaultWeights()
		w.Age = math.NaN()
		assert.Error(t, w.Validate())
	})

	t.Run("scorer refuses invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Weights.Lifestyle = 0.5
		_, err := NewScorer(cfg)
		assert.Error(t, err)
	})
}

func TestConfig_ValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nan budget gap", func(c *Config) { c.BudgetMaxGap = math.NaN() }},
		{"inf budget gap", func(c *Config) { c.BudgetMaxGap = math.Inf(1) }},
		{"nan unknown distance", func(c *Config) { c.UnknownDistanceScore = math.NaN() }},
		{"nan location penalty", func(c *Config) { c.LocationPenaltyPerKm = math.NaN() }},
		{"inf deal breaker penalty", func(c *Config) { c.DealBreakerPenalty = math.Inf(1) }},
		{"nan age penalty", func(c *Config) { c.AgePenaltyPerYear = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
			_, err := NewScorer(cfg)
			assert.Error(t, err)
		})
	}
}

func TestClampNaN(t *testing.T) {
	assert.Equal(t, 0.0, clamp(math.NaN()))
	assert.Equal(t, 100.0, clamp(150))
}

func TestScoreBudget(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
		BudgetRange: domain.IntRange{Min: 1000, Max: 2000},
	}}

	tests := []struct {
		name   string
		budget domain.IntRange
		check  func(t *testing.T, score float64)
	}{
		{
			name:   "overlap scores full",
			budget: domain.IntRange{Min: 1800, Max: 2500},
			check:  func(t *testing.T, score float64) { assert.Equal(t, 100.0, score) },
		},
		{
			name:   "gap of 1000 scores below half",
			budget: domain.IntRange{Min: 3000, Max: 4000},
			check:  func(t *testing.T, score float64) { assert.Less(t, score, 50.0) },
		},
		{
			name:   "gap beyond max scores zero",
			budget: domain.IntRange{Min: 4000, Max: 5000},
			check:  func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
		{
			name:   "missing candidate budget scores zero",
			budget: domain.IntRange{},
			check:  func(t *testing.T, score float64) { assert.Equal(t, 0.0, score) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Score(viewer, &domain.UserProfile{Budget: tt.budget}, nil)
			tt.check(t, b.Budget.Score)
		})
	}

	t.Run("strictly decreasing with gap", func(t *testing.T) {
		prev := 101.0
		for gap := 0; gap <= 1400; gap += 200 {
			candidate := &domain.UserProfile{Budget: domain.IntRange{Min: 2000 + gap + 1, Max: 5000}}
			score := s.Score(viewer, candidate, nil).Budget.Score
			assert.Less(t, score, prev)
			prev = score
		}
	})
}

func TestScoreLifestyle(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
		Lifestyle: domain.LifestylePreferences{
			Cleanliness:   []domain.Cleanliness{domain.CleanlinessClean, domain.CleanlinessVeryClean},
			SocialLevel:   []domain.SocialLevel{domain.SocialAmbivert},
			SleepSchedule: []domain.SleepSchedule{domain.SleepEarlyBird},
		},
	}}

	t.Run("all attributes accepted", func(t *testing.T) {
		candidate := &domain.UserProfile{Lifestyle: domain.Lifestyle{
			Cleanliness:   domain.CleanlinessClean,
			SocialLevel:   domain.SocialAmbivert,
			SleepSchedule: domain.SleepEarlyBird,
		}}
		got := s.Score(viewer, candidate, nil).Lifestyle
		assert.Equal(t, 100.0, got.Score)
		assert.Len(t, got.Reasons, 3)
	})

	t.Run("missing attributes score zero", func(t *testing.T) {
		got := s.Score(viewer, &domain.UserProfile{}, nil).Lifestyle
		assert.Equal(t, 0.0, got.Score)
		for _, r := range got.Reasons {
			assert.False(t, r.Positive)
		}
	})

	t.Run("one of three accepted", func(t *testing.T) {
		candidate := &domain.UserProfile{Lifestyle: domain.Lifestyle{
			Cleanliness:   domain.CleanlinessRelaxed,
			SocialLevel:   domain.SocialAmbivert,
			SleepSchedule: domain.SleepNightOwl,
		}}
		got := s.Score(viewer, candidate, nil).Lifestyle
		assert.InDelta(t, 100.0/3, got.Score, 1e-9)
	})

	t.Run("empty preferences score full", func(t *testing.T) {
		got := s.Score(&domain.UserProfile{}, &domain.UserProfile{}, nil).Lifestyle
		assert.Equal(t, 100.0, got.Score)
	})
}

func TestScoreLocation(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
		PreferredRadiusKm: 10,
		PreferredAreas:    []string{"Kreuzberg"},
	}}

	assert.Equal(t, 100.0, s.Score(viewer, &domain.UserProfile{}, fptr(4)).Location.Score)
	assert.Equal(t, 90.0, s.Score(viewer, &domain.UserProfile{}, fptr(15)).Location.Score)
	assert.Equal(t, 0.0, s.Score(viewer, &domain.UserProfile{}, fptr(500)).Location.Score)
	assert.Equal(t, 50.0, s.Score(viewer, &domain.UserProfile{}, nil).Location.Score)

	got := s.Score(viewer, &domain.UserProfile{Area: sptr("kreuzberg")}, fptr(2)).Location
	require.Len(t, got.Reasons, 2)
	assert.True(t, got.Reasons[1].Positive)
}

func TestScorePreferences(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
		MustHaves:   []string{"wifi", "washing machine"},
		NiceToHaves: []string{"balcony"},
	}}

	got := s.Score(viewer, &domain.UserProfile{Amenities: []string{"WiFi", "Balcony"}}, nil).Preferences
	assert.Equal(t, 50.0, got.Score)
	assert.Len(t, got.Reasons, 3)

	got = s.Score(&domain.UserProfile{}, &domain.UserProfile{}, nil).Preferences
	assert.Equal(t, 100.0, got.Score)
}

func TestScoreDealBreakers(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
		DealBreakers: domain.DealBreakers{Smoking: true, Pets: true, Parties: true},
	}}

	tests := []struct {
		name      string
		lifestyle domain.Lifestyle
		want      float64
	}{
		{"no violation", domain.Lifestyle{Drinking: true}, 100},
		{"one violation", domain.Lifestyle{Smoking: true}, 60},
		{"two violations", domain.Lifestyle{Smoking: true, Pets: true}, 20},
		{"floor at zero", domain.Lifestyle{Smoking: true, Pets: true, Parties: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(viewer, &domain.UserProfile{Lifestyle: tt.lifestyle}, nil).DealBreakers
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

func TestScoreInterestsAndAge(t *testing.T) {
	s := newTestScorer(t)
	viewer := &domain.UserProfile{
		Interests: []string{"Cooking", "hiking", "jazz"},
		Preferences: domain.RoommatePreferences{
			AgeRange: domain.IntRange{Min: 22, Max: 30},
		},
	}

	candidate := &domain.UserProfile{Interests: []string{"cooking", "Jazz", "chess"}, DateOfBirth: dob(25)}
	b := s.Score(viewer, candidate, nil)
	assert.Equal(t, 50.0, b.Interests.Score)
	assert.Equal(t, 100.0, b.Age.Score)

	candidate = &domain.UserProfile{DateOfBirth: dob(33)}
	b = s.Score(viewer, candidate, nil)
	assert.Equal(t, 0.0, b.Interests.Score)
	assert.Equal(t, 70.0, b.Age.Score)

	b = s.Score(viewer, &domain.UserProfile{}, nil)
	assert.Equal(t, 0.0, b.Age.Score)
}

func TestScoreOverall(t *testing.T) {
	s := newTestScorer(t)

	t.Run("empty viewer preferences give a perfect score", func(t *testing.T) {
		b := s.Score(&domain.UserProfile{}, &domain.UserProfile{}, nil)
		assert.InDelta(t, 100.0, b.Overall, 1e-9)
	})

	t.Run("overall is the weighted sum", func(t *testing.T) {
		viewer := &domain.UserProfile{Preferences: domain.RoommatePreferences{
			BudgetRange:       domain.IntRange{Min: 1000, Max: 2000},
			PreferredRadiusKm: 5,
			DealBreakers:      domain.DealBreakers{Smoking: true},
		}}
		candidate := &domain.UserProfile{
			Budget:    domain.IntRange{Min: 3000, Max: 4000},
			Lifestyle: domain.Lifestyle{Smoking: true},
		}
		b := s.Score(viewer, candidate, fptr(20))

		var want float64
		for i, c := range b.Categories() {
			want += c.Score * DefaultWeights().Slice()[i]
		}
		assert.InDelta(t, want, b.Overall, 1e-9)
	})

	t.Run("deterministic", func(t *testing.T) {
		viewer := &domain.UserProfile{Interests: []string{"a", "b"}}
		candidate := &domain.UserProfile{Interests: []string{"b", "c"}}
		assert.Equal(t, s.Score(viewer, candidate, nil), s.Score(viewer, candidate, nil))
	})
}

func TestScoreBounds(t *testing.T) {
	s := newTestScorer(t)

	viewers := []*domain.UserProfile{
		{},
		{
			Interests: []string{"music"},
			Preferences: domain.RoommatePreferences{
				AgeRange:          domain.IntRange{Min: 18, Max: 19},
				BudgetRange:       domain.IntRange{Min: 100, Max: 200},
				PreferredRadiusKm: 1,
				Lifestyle:         domain.LifestylePreferences{Cleanliness: []domain.Cleanliness{domain.CleanlinessVeryClean}},
				DealBreakers:      domain.DealBreakers{Smoking: true, Drinking: true, Pets: true, Parties: true},
				MustHaves:         []string{"parking"},
			},
		},
	}
	candidates := []*domain.UserProfile{
		{},
		{
			DateOfBirth: dob(80),
			Budget:      domain.IntRange{Min: 90000, Max: 100000},
			Lifestyle:   domain.Lifestyle{Smoking: true, Drinking: true, Pets: true, Parties: true, Cleanliness: domain.CleanlinessRelaxed},
			Interests:   []string{"golf"},
		},
	}
	distances := []*float64{nil, fptr(0), fptr(10000)}

	for _, v := range viewers {
		for _, c := range candidates {
			for _, d := range distances {
				b := s.Score(v, c, d)
				assert.GreaterOrEqual(t, b.Overall, 0.0)
				assert.LessOrEqual(t, b.Overall, 100.0)
				for _, cat := range b.Categories() {
					assert.GreaterOrEqual(t, cat.Score, 0.0)
					assert.LessOrEqual(t, cat.Score, 100.0)
				}
			}
		}
	}
}
