package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

const matchColumns = `
	id, user1_id, user1_name, user1_photo, user2_id, user2_name, user2_photo,
	compatibility_score, is_active, created_at, last_message_at`

type matchRow struct {
	ID                 string     `db:"id"`
	User1ID            int        `db:"user1_id"`
	User1Name          string     `db:"user1_name"`
	User1Photo         string     `db:"user1_photo"`
	User2ID            int        `db:"user2_id"`
	User2Name          string     `db:"user2_name"`
	User2Photo         string     `db:"user2_photo"`
	CompatibilityScore int        `db:"compatibility_score"`
	IsActive           bool       `db:"is_active"`
	CreatedAt          time.Time  `db:"created_at"`
	LastMessageAt      *time.Time `db:"last_message_at"`
}

func (r *matchRow) toDomain() *domain.MutualMatch {
	return &domain.MutualMatch{
		ID:                 r.ID,
		User1:              domain.MatchParticipant{UserID: r.User1ID, DisplayName: r.User1Name, Photo: r.User1Photo},
		User2:              domain.MatchParticipant{UserID: r.User2ID, DisplayName: r.User2Name, Photo: r.User2Photo},
		CompatibilityScore: r.CompatibilityScore,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
		LastMessageAt:      r.LastMessageAt,
	}
}

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.MutualMatch) error {
	// Ensure user1_id < user2_id for constraint
	if match.User1.UserID > match.User2.UserID {
		match.User1, match.User2 = match.User2, match.User1
	}

	query := `
		INSERT INTO mutual_matches (
			id, user1_id, user1_name, user1_photo, user2_id, user2_name, user2_photo,
			compatibility_score, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
	`
	createdAt := match.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.User1.UserID, match.User1.DisplayName, match.User1.Photo,
		match.User2.UserID, match.User2.DisplayName, match.User2.Photo,
		match.CompatibilityScore, match.IsActive, createdAt,
	)
	return err
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.MutualMatch, error) {
	var row matchRow
	query := `SELECT ` + matchColumns + ` FROM mutual_matches WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *matchRepository) GetByUsers(ctx context.Context, user1ID, user2ID int) (*domain.MutualMatch, error) {
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)

	var row matchRow
	query := `SELECT ` + matchColumns + ` FROM mutual_matches WHERE user1_id = $1 AND user2_id = $2`
	err := r.db.GetContext(ctx, &row, query, user1ID, user2ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *matchRepository) GetActiveMatches(ctx context.Context, userID int) ([]*domain.MutualMatch, error) {
	var rows []matchRow
	query := `
		SELECT ` + matchColumns + ` FROM mutual_matches
		WHERE (user1_id = $1 OR user2_id = $1) AND is_active = true
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	matches := make([]*domain.MutualMatch, 0, len(rows))
	for i := range rows {
		matches = append(matches, rows[i].toDomain())
	}
	return matches, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	query := `UPDATE mutual_matches SET is_active = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, isActive, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (r *matchRepository) TouchLastMessage(ctx context.Context, id string) error {
	query := `UPDATE mutual_matches SET last_message_at = CURRENT_TIMESTAMP WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
