package domain

// Reason explains one rule that contributed to a category score.
type Reason struct {
	Text     string `json:"text"`
	Positive bool   `json:"positive"`
}

type CategoryScore struct {
	Score   float64  `json:"score"`
	Reasons []Reason `json:"reasons"`
}

// CompatibilityBreakdown is the weighted result of scoring a candidate
// against a viewer. Every score is in [0, 100].
type CompatibilityBreakdown struct {
	Overall      float64       `json:"overall"`
	Lifestyle    CategoryScore `json:"lifestyle"`
	Budget       CategoryScore `json:"budget"`
	Location     CategoryScore `json:"location"`
	Preferences  CategoryScore `json:"preferences"`
	DealBreakers CategoryScore `json:"deal_breakers"`
	Interests    CategoryScore `json:"interests"`
	Age          CategoryScore `json:"age"`
}

// Categories returns the sub-scores in weight order.
func (b CompatibilityBreakdown) Categories() []CategoryScore {
	return []CategoryScore{
		b.Lifestyle,
		b.Budget,
		b.Location,
		b.Preferences,
		b.DealBreakers,
		b.Interests,
		b.Age,
	}
}
