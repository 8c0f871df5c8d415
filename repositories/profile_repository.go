package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/models"
	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUserAndKind(ctx context.Context, userID string, kind models.ProfileKind) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const profileColumns = `id, user_id, kind, display_name, bio, socials, photo_key, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	profile := &models.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Kind,
		&profile.DisplayName,
		&profile.Bio,
		&profile.Socials,
		&profile.PhotoKey,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return profile, nil
}

func (r *postgresProfileRepository) GetByUserAndKind(ctx context.Context, userID string, kind models.ProfileKind) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 AND kind = $2`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, userID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *postgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	query := `
		INSERT INTO profiles (id, user_id, kind, display_name, bio, socials)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, kind) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			socials = EXCLUDED.socials,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Kind,
		profile.DisplayName,
		profile.Bio,
		profile.Socials,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *postgresProfileRepository) UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET photo_key = $1, updated_at = NOW() WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}
