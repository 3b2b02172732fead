package compatibility

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// Scorer computes the compatibility between a viewer and a candidate.
// It has no side effects; the clock is only used to derive ages.
type Scorer struct {
	cfg Config
	now func() time.Time
}

type Option func(*Scorer)

// WithClock overrides the clock used for age derivation.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

func NewScorer(cfg Config, opts ...Option) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	s := &Scorer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// Score rates candidate against viewer's roommate preferences. distanceKm is
// nil when the distance is unknown.
func (s *Scorer) Score(viewer, candidate *domain.UserProfile, distanceKm *float64) domain.CompatibilityBreakdown {
	prefs := viewer.Preferences

	b := domain.CompatibilityBreakdown{
		Lifestyle:    scoreLifestyle(prefs.Lifestyle, candidate.Lifestyle),
		Budget:       s.scoreBudget(prefs.BudgetRange, candidate.Budget),
		Location:     s.scoreLocation(prefs, candidate, distanceKm),
		Preferences:  scorePreferences(prefs, candidate.Amenities),
		DealBreakers: s.scoreDealBreakers(prefs.DealBreakers, candidate.Lifestyle),
		Interests:    scoreInterests(viewer.Interests, candidate.Interests),
		Age:          s.scoreAge(prefs.AgeRange, candidate),
	}

	var overall float64
	weights := s.cfg.Weights.Slice()
	for i, c := range b.Categories() {
		overall += c.Score * weights[i]
	}
	b.Overall = clamp(overall)

	return b
}

func scoreLifestyle(accepted domain.LifestylePreferences, actual domain.Lifestyle) domain.CategoryScore {
	if accepted.IsEmpty() {
		return full("No lifestyle preferences set")
	}

	checks := []struct {
		label    string
		value    string
		accepted []string
	}{
		{"Cleanliness", string(actual.Cleanliness), asStrings(accepted.Cleanliness)},
		{"Social level", string(actual.SocialLevel), asStrings(accepted.SocialLevel)},
		{"Sleep schedule", string(actual.SleepSchedule), asStrings(accepted.SleepSchedule)},
	}

	var reasons []domain.Reason
	matched := 0
	for _, c := range checks {
		switch {
		case len(c.accepted) == 0:
			matched++
		case c.value == "":
			reasons = append(reasons, negative("%s not specified", c.label))
		case contains(c.accepted, c.value):
			matched++
			reasons = append(reasons, positive("%s matches (%s)", c.label, humanize(c.value)))
		default:
			reasons = append(reasons, negative("%s is %s", c.label, humanize(c.value)))
		}
	}

	return domain.CategoryScore{
		Score:   clamp(float64(matched) / float64(len(checks)) * 100),
		Reasons: reasons,
	}
}

func (s *Scorer) scoreBudget(want, offer domain.IntRange) domain.CategoryScore {
	if want.IsZero() {
		return full("No budget preference")
	}
	if offer.IsZero() {
		return zero("Budget not specified")
	}
	if want.Overlaps(offer) {
		return domain.CategoryScore{
			Score:   100,
			Reasons: []domain.Reason{positive("Budget overlaps with yours")},
		}
	}

	gap := float64(want.Gap(offer))
	return domain.CategoryScore{
		Score:   clamp(100 * (1 - gap/s.cfg.BudgetMaxGap)),
		Reasons: []domain.Reason{negative("Budget is %d outside your range", int(gap))},
	}
}

func (s *Scorer) scoreLocation(prefs domain.RoommatePreferences, candidate *domain.UserProfile, distanceKm *float64) domain.CategoryScore {
	var result domain.CategoryScore

	radius := prefs.PreferredRadiusKm
	switch {
	case radius <= 0:
		result = full("No distance preference")
	case distanceKm == nil:
		result = domain.CategoryScore{
			Score:   clamp(s.cfg.UnknownDistanceScore),
			Reasons: []domain.Reason{negative("Distance unknown")},
		}
	case *distanceKm <= radius:
		result = domain.CategoryScore{
			Score:   100,
			Reasons: []domain.Reason{positive("%.1f km away, within your %.0f km radius", *distanceKm, radius)},
		}
	default:
		beyond := *distanceKm - radius
		result = domain.CategoryScore{
			Score:   clamp(100 - s.cfg.LocationPenaltyPerKm*beyond),
			Reasons: []domain.Reason{negative("%.1f km beyond your preferred radius", beyond)},
		}
	}

	if candidate.Area != nil && containsFold(prefs.PreferredAreas, *candidate.Area) {
		result.Reasons = append(result.Reasons, positive("Lives in %s", *candidate.Area))
	}

	return result
}

func scorePreferences(prefs domain.RoommatePreferences, amenities []string) domain.CategoryScore {
	var reasons []domain.Reason
	score := 100.0

	if len(prefs.MustHaves) > 0 {
		present := 0
		for _, m := range prefs.MustHaves {
			if containsFold(amenities, m) {
				present++
				reasons = append(reasons, positive("Has %s", m))
			} else {
				reasons = append(reasons, negative("Missing %s", m))
			}
		}
		score = float64(present) / float64(len(prefs.MustHaves)) * 100
	} else {
		reasons = append(reasons, positive("No must-haves set"))
	}

	for _, n := range prefs.NiceToHaves {
		if containsFold(amenities, n) {
			reasons = append(reasons, positive("Also has %s", n))
		}
	}

	return domain.CategoryScore{Score: clamp(score), Reasons: reasons}
}

func (s *Scorer) scoreDealBreakers(flags domain.DealBreakers, actual domain.Lifestyle) domain.CategoryScore {
	if !flags.Any() {
		return full("No deal-breakers set")
	}

	checks := []struct {
		flag, trait bool
		label       string
	}{
		{flags.Smoking, actual.Smoking, "Smokes"},
		{flags.Drinking, actual.Drinking, "Drinks"},
		{flags.Pets, actual.Pets, "Has pets"},
		{flags.Parties, actual.Parties, "Hosts parties"},
	}

	score := 100.0
	var reasons []domain.Reason
	for _, c := range checks {
		if c.flag && c.trait {
			score -= s.cfg.DealBreakerPenalty
			reasons = append(reasons, negative("%s (deal-breaker)", c.label))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, positive("No deal-breakers violated"))
	}

	return domain.CategoryScore{Score: clamp(score), Reasons: reasons}
}

// scoreInterests is the Jaccard overlap of both interest sets.
func scoreInterests(mine, theirs []string) domain.CategoryScore {
	if len(mine) == 0 {
		return full("No interests to compare")
	}
	if len(theirs) == 0 {
		return zero("No interests listed")
	}

	a := normalizedSet(mine)
	b := normalizedSet(theirs)

	var shared []string
	for k := range a {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		}
	}
	union := len(a) + len(b) - len(shared)
	sort.Strings(shared)

	if len(shared) == 0 {
		return zero("No shared interests")
	}
	return domain.CategoryScore{
		Score:   clamp(float64(len(shared)) / float64(union) * 100),
		Reasons: []domain.Reason{positive("Shared interests: %s", strings.Join(shared, ", "))},
	}
}

func (s *Scorer) scoreAge(want domain.IntRange, candidate *domain.UserProfile) domain.CategoryScore {
	if want.IsZero() {
		return full("No age preference")
	}
	age, ok := candidate.Age(s.now())
	if !ok {
		return zero("Age not specified")
	}
	if want.Contains(age) {
		return domain.CategoryScore{
			Score:   100,
			Reasons: []domain.Reason{positive("Age %d fits your range", age)},
		}
	}

	years := want.Gap(domain.IntRange{Min: age, Max: age})
	return domain.CategoryScore{
		Score:   clamp(100 - s.cfg.AgePenaltyPerYear*float64(years)),
		Reasons: []domain.Reason{negative("Age %d is outside your range", age)},
	}
}

func full(text string) domain.CategoryScore {
	return domain.CategoryScore{Score: 100, Reasons: []domain.Reason{positive("%s", text)}}
}

func zero(text string) domain.CategoryScore {
	return domain.CategoryScore{Score: 0, Reasons: []domain.Reason{negative("%s", text)}}
}

func positive(format string, args ...interface{}) domain.Reason {
	return domain.Reason{Text: fmt.Sprintf(format, args...), Positive: true}
}

func negative(format string, args ...interface{}) domain.Reason {
	return domain.Reason{Text: fmt.Sprintf(format, args...), Positive: false}
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func asStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func normalizedSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func humanize(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}
