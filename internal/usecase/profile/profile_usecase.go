package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/roomly-backend/internal/usecase/filter"
)

// SessionDirectory is the part of the session manager profile edits touch.
type SessionDirectory interface {
	Invalidate(viewerID int)
	Scorer() *compatibility.Scorer
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	sessions    SessionDirectory
	logger      *zap.Logger
	now         func() time.Time
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	sessions SessionDirectory,
	logger *zap.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		sessions:    sessions,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateProfileRequest represents profile creation request
type CreateProfileRequest struct {
	DisplayName  string                     `json:"display_name" validate:"required,min=2,max=100"`
	Gender       domain.Gender              `json:"gender" validate:"omitempty,oneof=male female non_binary other"`
	DateOfBirth  *time.Time                 `json:"date_of_birth"`
	Bio          *string                    `json:"bio" validate:"omitempty,max=500"`
	Area         *string                    `json:"area" validate:"omitempty,max=100"`
	LocationLat  *float64                   `json:"location_lat" validate:"omitempty,gte=-90,lte=90"`
	LocationLon  *float64                   `json:"location_lon" validate:"omitempty,gte=-180,lte=180"`
	Lifestyle    domain.Lifestyle           `json:"lifestyle"`
	Preferences  domain.RoommatePreferences `json:"preferences"`
	HousingTypes []domain.HousingType       `json:"housing_types" validate:"omitempty,dive,oneof=apartment house studio room shared_room"`
	Budget       domain.IntRange            `json:"budget"`
	Amenities    []string                   `json:"amenities" validate:"omitempty,max=20"`
	Interests    []string                   `json:"interests" validate:"omitempty,max=10"`
	Photos       []string                   `json:"photos" validate:"omitempty,max=6,dive,url"`
}

// UpdateProfileRequest represents profile update request. Nil fields keep
// their value.
type UpdateProfileRequest struct {
	DisplayName  *string                     `json:"display_name" validate:"omitempty,min=2,max=100"`
	Gender       *domain.Gender              `json:"gender" validate:"omitempty,oneof=male female non_binary other"`
	DateOfBirth  *time.Time                  `json:"date_of_birth"`
	Bio          *string                     `json:"bio" validate:"omitempty,max=500"`
	Area         *string                     `json:"area" validate:"omitempty,max=100"`
	LocationLat  *float64                    `json:"location_lat" validate:"omitempty,gte=-90,lte=90"`
	LocationLon  *float64                    `json:"location_lon" validate:"omitempty,gte=-180,lte=180"`
	Lifestyle    *domain.Lifestyle           `json:"lifestyle"`
	Preferences  *domain.RoommatePreferences `json:"preferences"`
	HousingTypes *[]domain.HousingType       `json:"housing_types" validate:"omitempty,dive,oneof=apartment house studio room shared_room"`
	Budget       *domain.IntRange            `json:"budget"`
	Amenities    *[]string                   `json:"amenities" validate:"omitempty,max=20"`
	Interests    *[]string                   `json:"interests" validate:"omitempty,max=10"`
	Photos       *[]string                   `json:"photos" validate:"omitempty,max=6,dive,url"`
}

// ProfileResponse represents profile response with additional info
type ProfileResponse struct {
	*domain.UserProfile
	Age           *int                           `json:"age,omitempty"`
	DistanceKm    *float64                       `json:"distance_km,omitempty"`
	Compatibility *domain.CompatibilityBreakdown `json:"compatibility,omitempty"`
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID int) (*domain.UserProfile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// GetProfileByUserID returns the target profile with age, distance and its
// compatibility against the viewer.
func (uc *ProfileUseCase) GetProfileByUserID(ctx context.Context, targetUserID, viewerID int) (*ProfileResponse, error) {
	target, err := uc.profileRepo.GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	response := &ProfileResponse{UserProfile: target}
	if age, ok := target.Age(uc.now()); ok {
		response.Age = &age
	}
	if viewerID == targetUserID {
		return response, nil
	}

	viewer, err := uc.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		uc.logger.Debug("viewer profile unavailable for compatibility",
			zap.Int("viewer_id", viewerID),
			zap.Error(err),
		)
		return response, nil
	}

	if d := viewer.DistanceTo(target); d != nil {
		rounded := math.Round(*d*10) / 10
		response.DistanceKm = &rounded
	}
	breakdown := uc.sessions.Scorer().Score(viewer, target, viewer.DistanceTo(target))
	response.Compatibility = &breakdown
	return response, nil
}

// CreateProfile creates a new profile (onboarding)
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, userID int, req *CreateProfileRequest) (*domain.UserProfile, error) {
	if err := filter.ValidateStruct(req, "profile"); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserID:       userID,
		DisplayName:  req.DisplayName,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		Bio:          req.Bio,
		Area:         req.Area,
		LocationLat:  req.LocationLat,
		LocationLon:  req.LocationLon,
		Lifestyle:    req.Lifestyle,
		Preferences:  req.Preferences,
		HousingTypes: req.HousingTypes,
		Budget:       req.Budget,
		Amenities:    req.Amenities,
		Interests:    req.Interests,
		Photos:       req.Photos,
	}
	if err := filter.ValidateStruct(profile, "profile"); err != nil {
		return nil, err
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	uc.logger.Info("profile created", zap.Int("user_id", userID))
	return profile, nil
}

// UpdateProfile applies the non-nil fields. The viewer's discovery session
// is rebuilt on the next request.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID int, req *UpdateProfileRequest) (*domain.UserProfile, error) {
	if err := filter.ValidateStruct(req, "profile"); err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Area != nil {
		profile.Area = req.Area
	}
	if req.LocationLat != nil {
		profile.LocationLat = req.LocationLat
	}
	if req.LocationLon != nil {
		profile.LocationLon = req.LocationLon
	}
	if req.Lifestyle != nil {
		profile.Lifestyle = *req.Lifestyle
	}
	if req.Preferences != nil {
		profile.Preferences = *req.Preferences
	}
	if req.HousingTypes != nil {
		profile.HousingTypes = *req.HousingTypes
	}
	if req.Budget != nil {
		profile.Budget = *req.Budget
	}
	if req.Amenities != nil {
		profile.Amenities = *req.Amenities
	}
	if req.Interests != nil {
		profile.Interests = *req.Interests
	}
	if req.Photos != nil {
		profile.Photos = *req.Photos
	}

	if err := filter.ValidateStruct(profile, "profile"); err != nil {
		return nil, err
	}
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	uc.sessions.Invalidate(userID)
	return profile, nil
}

// CompleteOnboarding marks the profile discoverable. A missing profile is
// created from req first.
func (uc *ProfileUseCase) CompleteOnboarding(ctx context.Context, userID int, req *CreateProfileRequest) (*domain.UserProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) && req != nil {
		profile, err = uc.CreateProfile(ctx, userID, req)
	}
	if err != nil {
		return nil, err
	}
	if profile.IsOnboardingComplete {
		return profile, nil
	}

	profile.IsOnboardingComplete = true
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	uc.sessions.Invalidate(userID)
	return profile, nil
}
