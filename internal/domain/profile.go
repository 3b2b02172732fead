package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/gdugdh24/roomly-backend/pkg/geo"
)

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"
	GenderOther     Gender = "other"
)

type HousingType string

const (
	HousingApartment  HousingType = "apartment"
	HousingHouse      HousingType = "house"
	HousingStudio     HousingType = "studio"
	HousingRoom       HousingType = "room"
	HousingSharedRoom HousingType = "shared_room"
)

type Cleanliness string

const (
	CleanlinessVeryClean Cleanliness = "very_clean"
	CleanlinessClean     Cleanliness = "clean"
	CleanlinessModerate  Cleanliness = "moderate"
	CleanlinessRelaxed   Cleanliness = "relaxed"
)

type SocialLevel string

const (
	SocialIntrovert SocialLevel = "introvert"
	SocialAmbivert  SocialLevel = "ambivert"
	SocialExtrovert SocialLevel = "extrovert"
)

type SleepSchedule string

const (
	SleepEarlyBird SleepSchedule = "early_bird"
	SleepNightOwl  SleepSchedule = "night_owl"
	SleepFlexible  SleepSchedule = "flexible"
)

type LeaseDuration string

const (
	LeaseShortTerm  LeaseDuration = "short_term"
	LeaseMediumTerm LeaseDuration = "medium_term"
	LeaseLongTerm   LeaseDuration = "long_term"
	LeaseFlexible   LeaseDuration = "flexible"
)

// IntRange is an inclusive range. A zero Min means no lower bound and a zero
// Max means no upper bound.
type IntRange struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"omitempty,gtefield=Min"`
}

func (r IntRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

func (r IntRange) upper() int {
	if r.Max == 0 {
		return math.MaxInt
	}
	return r.Max
}

// Contains reports whether v falls inside the range.
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.upper()
}

// Overlaps reports whether the two ranges share at least one value.
func (r IntRange) Overlaps(o IntRange) bool {
	return max(r.Min, o.Min) <= min(r.upper(), o.upper())
}

// Gap returns the distance between two non-overlapping ranges, 0 otherwise.
func (r IntRange) Gap(o IntRange) int {
	if r.Overlaps(o) {
		return 0
	}
	if o.Min > r.upper() {
		return o.Min - r.upper()
	}
	return r.Min - o.upper()
}

// Lifestyle describes how a person lives. Empty enum values mean the user
// did not answer.
type Lifestyle struct {
	Cleanliness   Cleanliness   `json:"cleanliness,omitempty"`
	SocialLevel   SocialLevel   `json:"social_level,omitempty"`
	SleepSchedule SleepSchedule `json:"sleep_schedule,omitempty"`
	Smoking       bool          `json:"smoking"`
	Drinking      bool          `json:"drinking"`
	Pets          bool          `json:"pets"`
	Parties       bool          `json:"parties"`
}

// LifestylePreferences holds the accepted values per lifestyle category.
type LifestylePreferences struct {
	Cleanliness   []Cleanliness   `json:"cleanliness,omitempty" validate:"omitempty,dive,oneof=very_clean clean moderate relaxed"`
	SocialLevel   []SocialLevel   `json:"social_level,omitempty" validate:"omitempty,dive,oneof=introvert ambivert extrovert"`
	SleepSchedule []SleepSchedule `json:"sleep_schedule,omitempty" validate:"omitempty,dive,oneof=early_bird night_owl flexible"`
}

func (p LifestylePreferences) IsEmpty() bool {
	return len(p.Cleanliness) == 0 && len(p.SocialLevel) == 0 && len(p.SleepSchedule) == 0
}

// DealBreakers flags traits the viewer refuses to live with.
type DealBreakers struct {
	Smoking  bool `json:"smoking"`
	Drinking bool `json:"drinking"`
	Pets     bool `json:"pets"`
	Parties  bool `json:"parties"`
}

func (d DealBreakers) Any() bool {
	return d.Smoking || d.Drinking || d.Pets || d.Parties
}

type RoommatePreferences struct {
	AgeRange          IntRange             `json:"age_range"`
	GenderPreference  []Gender             `json:"gender_preference,omitempty"`
	HousingTypes      []HousingType        `json:"housing_types,omitempty"`
	BudgetRange       IntRange             `json:"budget_range"`
	MoveInDate        *time.Time           `json:"move_in_date,omitempty"`
	LeaseDuration     LeaseDuration        `json:"lease_duration,omitempty"`
	PreferredAreas    []string             `json:"preferred_areas,omitempty"`
	MaxCommuteMinutes int                  `json:"max_commute_minutes,omitempty"`
	Transportation    []string             `json:"transportation,omitempty"`
	PreferredRadiusKm float64              `json:"preferred_radius_km,omitempty"`
	Lifestyle         LifestylePreferences `json:"lifestyle"`
	DealBreakers      DealBreakers         `json:"deal_breakers"`
	MustHaves         []string             `json:"must_haves,omitempty"`
	NiceToHaves       []string             `json:"nice_to_haves,omitempty"`
}

// Value stores lifestyle as a JSONB column.
func (l Lifestyle) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Lifestyle) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Value stores preferences as a JSONB column.
func (p RoommatePreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *RoommatePreferences) Scan(value interface{}) error {
	return scanJSON(value, p)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for JSON column")
	}
}

// UserProfile is a candidate or viewer as seen by the discovery engine.
type UserProfile struct {
	ID                   int                 `json:"id"`
	UserID               int                 `json:"user_id"`
	DisplayName          string              `json:"display_name"`
	Gender               Gender              `json:"gender,omitempty"`
	DateOfBirth          *time.Time          `json:"date_of_birth,omitempty"`
	Bio                  *string             `json:"bio,omitempty"`
	Area                 *string             `json:"area,omitempty"`
	LocationLat          *float64            `json:"location_lat,omitempty"`
	LocationLon          *float64            `json:"location_lon,omitempty"`
	Lifestyle            Lifestyle           `json:"lifestyle"`
	Preferences          RoommatePreferences `json:"preferences"`
	HousingTypes         []HousingType       `json:"housing_types,omitempty"`
	Budget               IntRange            `json:"budget"`
	Amenities            []string            `json:"amenities,omitempty"`
	Interests            []string            `json:"interests,omitempty"`
	Photos               []string            `json:"photos,omitempty"`
	IsVerified           bool                `json:"is_verified"`
	IsOnboardingComplete bool                `json:"is_onboarding_complete"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// Age returns the age in full years at now. The second value is false when
// the date of birth is unknown.
func (p *UserProfile) Age(now time.Time) (int, bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	dob := p.DateOfBirth.UTC()
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age, true
}

func (p *UserProfile) HasLocation() bool {
	return p.LocationLat != nil && p.LocationLon != nil
}

// DistanceTo returns the great-circle distance in km, or nil when either
// side has no location.
func (p *UserProfile) DistanceTo(other *UserProfile) *float64 {
	if p == nil || other == nil || !p.HasLocation() || !other.HasLocation() {
		return nil
	}
	d := geo.DistanceKm(*p.LocationLat, *p.LocationLon, *other.LocationLat, *other.LocationLon)
	return &d
}

// Participant returns the display snapshot stored on a mutual match.
func (p *UserProfile) Participant() MatchParticipant {
	participant := MatchParticipant{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
	}
	if len(p.Photos) > 0 {
		participant.Photo = p.Photos[0]
	}
	return participant
}
