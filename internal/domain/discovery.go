package domain

// DiscoveryFilters is the viewer-owned constraint set applied to candidates.
// The zero value admits every candidate.
type DiscoveryFilters struct {
	AgeRange              IntRange             `json:"age_range"`
	BudgetRange           IntRange             `json:"budget_range"`
	MaxDistanceKm         float64              `json:"max_distance_km" validate:"gte=0"`
	Genders               []Gender             `json:"genders,omitempty" validate:"omitempty,dive,oneof=male female non_binary other"`
	HousingTypes          []HousingType        `json:"housing_types,omitempty" validate:"omitempty,dive,oneof=apartment house studio room shared_room"`
	Lifestyle             LifestylePreferences `json:"lifestyle"`
	DealBreakers          DealBreakers         `json:"deal_breakers"`
	Interests             []string             `json:"interests,omitempty" validate:"omitempty,dive,required"`
	HasPhotos             bool                 `json:"has_photos"`
	IsVerified            bool                 `json:"is_verified"`
	MinCompatibilityScore int                  `json:"min_compatibility_score" validate:"gte=0,lte=100"`
}

// FiltersPatch is a partial filter update. Nil fields keep their value.
type FiltersPatch struct {
	AgeRange              *IntRange             `json:"age_range,omitempty"`
	BudgetRange           *IntRange             `json:"budget_range,omitempty"`
	MaxDistanceKm         *float64              `json:"max_distance_km,omitempty"`
	Genders               *[]Gender             `json:"genders,omitempty"`
	HousingTypes          *[]HousingType        `json:"housing_types,omitempty"`
	Lifestyle             *LifestylePreferences `json:"lifestyle,omitempty"`
	DealBreakers          *DealBreakers         `json:"deal_breakers,omitempty"`
	Interests             *[]string             `json:"interests,omitempty"`
	HasPhotos             *bool                 `json:"has_photos,omitempty"`
	IsVerified            *bool                 `json:"is_verified,omitempty"`
	MinCompatibilityScore *int                  `json:"min_compatibility_score,omitempty"`
}

// Apply returns a copy of f with the patch applied.
func (p FiltersPatch) Apply(f DiscoveryFilters) DiscoveryFilters {
	if p.AgeRange != nil {
		f.AgeRange = *p.AgeRange
	}
	if p.BudgetRange != nil {
		f.BudgetRange = *p.BudgetRange
	}
	if p.MaxDistanceKm != nil {
		f.MaxDistanceKm = *p.MaxDistanceKm
	}
	if p.Genders != nil {
		f.Genders = *p.Genders
	}
	if p.HousingTypes != nil {
		f.HousingTypes = *p.HousingTypes
	}
	if p.Lifestyle != nil {
		f.Lifestyle = *p.Lifestyle
	}
	if p.DealBreakers != nil {
		f.DealBreakers = *p.DealBreakers
	}
	if p.Interests != nil {
		f.Interests = *p.Interests
	}
	if p.HasPhotos != nil {
		f.HasPhotos = *p.HasPhotos
	}
	if p.IsVerified != nil {
		f.IsVerified = *p.IsVerified
	}
	if p.MinCompatibilityScore != nil {
		f.MinCompatibilityScore = *p.MinCompatibilityScore
	}
	return f
}

// DiscoveryPreferences is the only discovery state that survives a reload.
type DiscoveryPreferences struct {
	Filters     DiscoveryFilters `json:"filters"`
	SearchQuery string           `json:"search_query"`
}

// DiscoveryCard is a scored candidate inside a deck. Cards are never
// removed, only marked by swipes.
type DiscoveryCard struct {
	Profile            *UserProfile           `json:"profile"`
	CompatibilityScore int                    `json:"compatibility_score"`
	Breakdown          CompatibilityBreakdown `json:"breakdown"`
	DistanceKm         *float64               `json:"distance_km,omitempty"`
	IsLiked            bool                   `json:"is_liked"`
	IsPassed           bool                   `json:"is_passed"`
	IsSuperLiked       bool                   `json:"is_super_liked"`
}

func (c *DiscoveryCard) CandidateID() int {
	return c.Profile.UserID
}

func (c *DiscoveryCard) Swiped() bool {
	return c.IsLiked || c.IsPassed
}

// ApplyAction sets the swipe flags from the latest action only.
func (c *DiscoveryCard) ApplyAction(action SwipeAction) {
	c.IsPassed = action == SwipePass
	c.IsLiked = action == SwipeLike || action == SwipeSuperLike
	c.IsSuperLiked = action == SwipeSuperLike
}

// CandidateQuery is what the engine asks a candidate repository for.
type CandidateQuery struct {
	ViewerID    int
	Filters     DiscoveryFilters
	SearchQuery string
	Limit       int
	Cursor      string
	Exclude     []int
}

type CandidatePage struct {
	Profiles   []*UserProfile
	HasMore    bool
	NextCursor string
}
