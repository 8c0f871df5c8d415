package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/models"
	"github.com/google/uuid"
)

var ErrConsentNotFound = errors.New("auction consent not found")

type ConsentRepository interface {
	GetByTournamentAndEmail(ctx context.Context, tournamentID, email string) (*models.AuctionConsent, error)
	Upsert(ctx context.Context, consent *models.AuctionConsent) error
}

type postgresConsentRepository struct {
	db *sql.DB
}

func NewPostgresConsentRepository(db *sql.DB) ConsentRepository {
	return &postgresConsentRepository{db: db}
}

func (r *postgresConsentRepository) GetByTournamentAndEmail(ctx context.Context, tournamentID, email string) (*models.AuctionConsent, error) {
	query := `
		SELECT id, tournament_id, email, choice, created_at, updated_at
		FROM auction_consent
		WHERE tournament_id = $1 AND email = $2`

	consent := &models.AuctionConsent{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, email).Scan(
		&consent.ID,
		&consent.TournamentID,
		&consent.Email,
		&consent.Choice,
		&consent.CreatedAt,
		&consent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConsentNotFound
		}
		return nil, fmt.Errorf("failed to scan auction consent: %w", err)
	}
	return consent, nil
}

func (r *postgresConsentRepository) Upsert(ctx context.Context, consent *models.AuctionConsent) error {
	if consent.ID == "" {
		consent.ID = uuid.NewString()
	}

	query := `
		INSERT INTO auction_consent (id, tournament_id, email, choice)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id, email) DO UPDATE SET
			choice = EXCLUDED.choice,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		consent.ID,
		consent.TournamentID,
		consent.Email,
		consent.Choice,
	).Scan(&consent.ID, &consent.CreatedAt, &consent.UpdatedAt)
}
