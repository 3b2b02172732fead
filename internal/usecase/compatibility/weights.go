package compatibility

import (
	"fmt"
	"math"
)

const weightEpsilon = 1e-9

// Weights are the category weights of the overall score. They must sum to 1.
type Weights struct {
	Lifestyle    float64 `json:"lifestyle"`
	Budget       float64 `json:"budget"`
	Location     float64 `json:"location"`
	Preferences  float64 `json:"preferences"`
	DealBreakers float64 `json:"deal_breakers"`
	Interests    float64 `json:"interests"`
	Age          float64 `json:"age"`
}

func DefaultWeights() Weights {
	return Weights{
		Lifestyle:    0.25,
		Budget:       0.20,
		Location:     0.15,
		Preferences:  0.20,
		DealBreakers: 0.10,
		Interests:    0.05,
		Age:          0.05,
	}
}

// Slice returns the weights in the same order as CompatibilityBreakdown.Categories.
func (w Weights) Slice() []float64 {
	return []float64{w.Lifestyle, w.Budget, w.Location, w.Preferences, w.DealBreakers, w.Interests, w.Age}
}

func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.Slice() {
		sum += v
	}
	return sum
}

func (w Weights) Validate() error {
	for _, v := range w.Slice() {
		if v < 0 || !finite(v) {
			return fmt.Errorf("weights must be non-negative, got %v", v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("weights must sum to 1.0, got %.10f", sum)
	}
	return nil
}

// Config tunes the category rules.
type Config struct {
	Weights Weights
	// BudgetMaxGap is the gap between budget ranges at which the budget score reaches 0.
	BudgetMaxGap float64
	// LocationPenaltyPerKm is subtracted for every km beyond the preferred radius.
	LocationPenaltyPerKm float64
	// UnknownDistanceScore is used when either side has no location.
	UnknownDistanceScore float64
	DealBreakerPenalty   float64
	AgePenaltyPerYear    float64
}

func DefaultConfig() Config {
	return Config{
		Weights:              DefaultWeights(),
		BudgetMaxGap:         1500,
		LocationPenaltyPerKm: 2,
		UnknownDistanceScore: 50,
		DealBreakerPenalty:   40,
		AgePenaltyPerYear:    10,
	}
}

func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.BudgetMaxGap <= 0 || !finite(c.BudgetMaxGap) {
		return fmt.Errorf("budget max gap must be positive")
	}
	for _, v := range []float64{c.LocationPenaltyPerKm, c.DealBreakerPenalty, c.AgePenaltyPerYear} {
		if v < 0 || !finite(v) {
			return fmt.Errorf("penalties must be non-negative, got %v", v)
		}
	}
	if c.UnknownDistanceScore < 0 || c.UnknownDistanceScore > 100 || !finite(c.UnknownDistanceScore) {
		return fmt.Errorf("unknown distance score must be within [0, 100]")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
