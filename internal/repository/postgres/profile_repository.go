package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

const profileColumns = `
	id, user_id, display_name, gender, date_of_birth, bio, area,
	location_lat, location_lon, lifestyle, preferences, housing_types,
	budget_min, budget_max, amenities, interests, photos,
	is_verified, is_onboarding_complete, created_at, updated_at`

type profileRow struct {
	ID                   int                        `db:"id"`
	UserID               int                        `db:"user_id"`
	DisplayName          string                     `db:"display_name"`
	Gender               string                     `db:"gender"`
	DateOfBirth          *time.Time                 `db:"date_of_birth"`
	Bio                  *string                    `db:"bio"`
	Area                 *string                    `db:"area"`
	LocationLat          *float64                   `db:"location_lat"`
	LocationLon          *float64                   `db:"location_lon"`
	Lifestyle            domain.Lifestyle           `db:"lifestyle"`
	Preferences          domain.RoommatePreferences `db:"preferences"`
	HousingTypes         pq.StringArray             `db:"housing_types"`
	BudgetMin            int                        `db:"budget_min"`
	BudgetMax            int                        `db:"budget_max"`
	Amenities            pq.StringArray             `db:"amenities"`
	Interests            pq.StringArray             `db:"interests"`
	Photos               pq.StringArray             `db:"photos"`
	IsVerified           bool                       `db:"is_verified"`
	IsOnboardingComplete bool                       `db:"is_onboarding_complete"`
	CreatedAt            time.Time                  `db:"created_at"`
	UpdatedAt            time.Time                  `db:"updated_at"`
}

func (r *profileRow) toDomain() *domain.UserProfile {
	housing := make([]domain.HousingType, 0, len(r.HousingTypes))
	for _, h := range r.HousingTypes {
		housing = append(housing, domain.HousingType(h))
	}
	return &domain.UserProfile{
		ID:                   r.ID,
		UserID:               r.UserID,
		DisplayName:          r.DisplayName,
		Gender:               domain.Gender(r.Gender),
		DateOfBirth:          r.DateOfBirth,
		Bio:                  r.Bio,
		Area:                 r.Area,
		LocationLat:          r.LocationLat,
		LocationLon:          r.LocationLon,
		Lifestyle:            r.Lifestyle,
		Preferences:          r.Preferences,
		HousingTypes:         housing,
		Budget:               domain.IntRange{Min: r.BudgetMin, Max: r.BudgetMax},
		Amenities:            []string(r.Amenities),
		Interests:            []string(r.Interests),
		Photos:               []string(r.Photos),
		IsVerified:           r.IsVerified,
		IsOnboardingComplete: r.IsOnboardingComplete,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func housingStrings(in []domain.HousingType) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, h := range in {
		out = append(out, string(h))
	}
	return out
}

type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository returns a store serving both the profile and the
// candidate side.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var (
	_ repository.ProfileRepository   = (*ProfileRepository)(nil)
	_ repository.CandidateRepository = (*ProfileRepository)(nil)
)

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, gender, date_of_birth, bio, area,
			location_lat, location_lon, lifestyle, preferences, housing_types,
			budget_min, budget_max, amenities, interests, photos,
			is_verified, is_onboarding_complete
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.UserID, profile.DisplayName, string(profile.Gender), profile.DateOfBirth,
		profile.Bio, profile.Area, profile.LocationLat, profile.LocationLon,
		profile.Lifestyle, profile.Preferences, housingStrings(profile.HousingTypes),
		profile.Budget.Min, profile.Budget.Max, pq.Array(profile.Amenities),
		pq.Array(profile.Interests), pq.Array(profile.Photos),
		profile.IsVerified, profile.IsOnboardingComplete,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int) (*domain.UserProfile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, gender = $2, date_of_birth = $3, bio = $4, area = $5,
		    location_lat = $6, location_lon = $7, lifestyle = $8, preferences = $9,
		    housing_types = $10, budget_min = $11, budget_max = $12, amenities = $13,
		    interests = $14, photos = $15, is_verified = $16, is_onboarding_complete = $17,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $18
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, string(profile.Gender), profile.DateOfBirth, profile.Bio, profile.Area,
		profile.LocationLat, profile.LocationLon, profile.Lifestyle, profile.Preferences,
		housingStrings(profile.HousingTypes), profile.Budget.Min, profile.Budget.Max,
		pq.Array(profile.Amenities), pq.Array(profile.Interests), pq.Array(profile.Photos),
		profile.IsVerified, profile.IsOnboardingComplete,
		profile.UserID,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return err
}

// FetchCandidates pages by user id. Gender, verification, photo and search
// constraints are pushed into SQL; the remaining filters run in the engine.
func (r *ProfileRepository) FetchCandidates(ctx context.Context, q domain.CandidateQuery) (*domain.CandidatePage, error) {
	after := 0
	if q.Cursor != "" {
		v, err := strconv.Atoi(q.Cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", q.Cursor, err)
		}
		after = v
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + profileColumns + ` FROM profiles p
		WHERE p.is_onboarding_complete = true
		  AND p.user_id > $1
		  AND p.user_id <> $2
		  AND NOT EXISTS (
		      SELECT 1 FROM swipes s WHERE s.swiper_id = $2 AND s.swiped_id = p.user_id
		  )`
	args := []interface{}{after, q.ViewerID}
	argCount := 3

	if len(q.Exclude) > 0 {
		exclude := make(pq.Int64Array, 0, len(q.Exclude))
		for _, id := range q.Exclude {
			exclude = append(exclude, int64(id))
		}
		query += fmt.Sprintf(" AND NOT (p.user_id = ANY($%d))", argCount)
		args = append(args, exclude)
		argCount++
	}

	if search := strings.TrimSpace(q.SearchQuery); search != "" {
		query += fmt.Sprintf(
			" AND (p.display_name ILIKE $%d OR p.bio ILIKE $%d OR p.area ILIKE $%d)",
			argCount, argCount, argCount,
		)
		args = append(args, "%"+search+"%")
		argCount++
	}

	if len(q.Filters.Genders) > 0 {
		genders := make(pq.StringArray, 0, len(q.Filters.Genders))
		for _, g := range q.Filters.Genders {
			genders = append(genders, string(g))
		}
		query += fmt.Sprintf(" AND p.gender = ANY($%d)", argCount)
		args = append(args, genders)
		argCount++
	}

	if q.Filters.IsVerified {
		query += " AND p.is_verified = true"
	}
	if q.Filters.HasPhotos {
		query += " AND cardinality(p.photos) > 0"
	}

	query += fmt.Sprintf(" ORDER BY p.user_id LIMIT $%d", argCount)
	args = append(args, limit+1)

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	page := &domain.CandidatePage{NextCursor: q.Cursor}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[:limit]
	}
	for i := range rows {
		page.Profiles = append(page.Profiles, rows[i].toDomain())
	}
	if n := len(rows); n > 0 {
		page.NextCursor = strconv.Itoa(rows[n-1].UserID)
	}
	return page, nil
}
