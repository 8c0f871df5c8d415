package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound      = errors.New("tournament registration not found")
	ErrRegistrationEmailConflict = errors.New("registration email already submitted for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.TournamentRegistration) error
	GetByID(ctx context.Context, id string) (*models.TournamentRegistration, error)
	ListByTournament(ctx context.Context, tournamentID string, verifiedOnly bool) ([]*models.TournamentRegistration, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	// ListPromotable — проверенные заявки, из которых ещё не создан игрок.
	ListPromotable(ctx context.Context, tournamentID string) ([]*models.TournamentRegistration, error)
	SetPromoted(ctx context.Context, exec SQLExecutor, id string, playerID string) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, sport_category, full_name, email, phone, height_m,
	date_of_birth, last_played, guardian_name, guardian_phone, verified, promoted_player_id,
	created_at, updated_at`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*models.TournamentRegistration, error) {
	reg := &models.TournamentRegistration{}
	err := row.Scan(
		&reg.ID,
		&reg.TournamentID,
		&reg.SportCategory,
		&reg.FullName,
		&reg.Email,
		&reg.Phone,
		&reg.HeightM,
		&reg.DateOfBirth,
		&reg.LastPlayed,
		&reg.GuardianName,
		&reg.GuardianPhone,
		&reg.Verified,
		&reg.PromotedPlayerID,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.TournamentRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO tournament_registrations (id, tournament_id, sport_category, full_name, email, phone,
			height_m, date_of_birth, last_played, guardian_name, guardian_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.ID,
		reg.TournamentID,
		reg.SportCategory,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.HeightM,
		reg.DateOfBirth,
		reg.LastPlayed,
		reg.GuardianName,
		reg.GuardianPhone,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "tournament_registrations_tournament_id_email_key" {
				return ErrRegistrationEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id string) (*models.TournamentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM tournament_registrations WHERE id = $1`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID string, verifiedOnly bool) ([]*models.TournamentRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM tournament_registrations
		WHERE tournament_id = $1
		  AND (NOT $2 OR verified)
		ORDER BY created_at ASC`
	return r.list(ctx, query, tournamentID, verifiedOnly)
}

func (r *postgresRegistrationRepository) ListPromotable(ctx context.Context, tournamentID string) ([]*models.TournamentRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM tournament_registrations
		WHERE tournament_id = $1 AND verified AND promoted_player_id IS NULL
		ORDER BY created_at ASC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*models.TournamentRegistration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE tournament_registrations SET verified = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, verified, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) SetPromoted(ctx context.Context, exec SQLExecutor, id string, playerID string) error {
	query := `UPDATE tournament_registrations SET promoted_player_id = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, playerID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
