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
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	CountAllocatedPlayers(ctx context.Context, exec SQLExecutor, teamID string) (int, error)
	// DebitBudget списывает amount условно: строка обновляется только если
	// остатка хватает. Возвращает ErrInsufficientTeamBudget при нехватке.
	DebitBudget(ctx context.Context, exec SQLExecutor, teamID string, amount int64) error
	CreditBudget(ctx context.Context, exec SQLExecutor, teamID string, amount int64) error
}

// ErrInsufficientTeamBudget возвращается DebitBudget, когда условное
// обновление не затронуло ни одной строки.
var ErrInsufficientTeamBudget = errors.New("insufficient team budget")

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}

	query := `
		INSERT INTO teams (id, tournament_id, sport_category, name, owner_name, owner_id,
			initial_budget, remaining_budget, min_players, max_players)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		team.ID,
		team.TournamentID,
		team.SportCategory,
		team.Name,
		team.OwnerName,
		team.OwnerID,
		team.InitialBudget,
		team.RemainingBudget,
		team.MinPlayers,
		team.MaxPlayers,
	).Scan(&team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "teams_tournament_id_name_key" {
					return ErrTeamNameConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "teams_tournament_id_fkey" {
					return ErrTeamTournamentInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, sport_category, name, owner_name, owner_id,
			initial_budget, remaining_budget, min_players, max_players, logo_key, created_at, updated_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.TournamentID,
		&team.SportCategory,
		&team.Name,
		&team.OwnerName,
		&team.OwnerID,
		&team.InitialBudget,
		&team.RemainingBudget,
		&team.MinPlayers,
		&team.MaxPlayers,
		&team.LogoKey,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Team, error) {
	query := `
		SELECT id, tournament_id, sport_category, name, owner_name, owner_id,
			initial_budget, remaining_budget, min_players, max_players, logo_key, created_at, updated_at
		FROM teams
		WHERE tournament_id = $1
		  AND ($2::text IS NULL OR sport_category = $2)
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, sportCategory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		scanErr := rows.Scan(
			&team.ID,
			&team.TournamentID,
			&team.SportCategory,
			&team.Name,
			&team.OwnerName,
			&team.OwnerID,
			&team.InitialBudget,
			&team.RemainingBudget,
			&team.MinPlayers,
			&team.MaxPlayers,
			&team.LogoKey,
			&team.CreatedAt,
			&team.UpdatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1,
			owner_name = $2,
			owner_id = $3,
			min_players = $4,
			max_players = $5,
			updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.OwnerName,
		team.OwnerID,
		team.MinPlayers,
		team.MaxPlayers,
		team.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "teams_tournament_id_name_key" {
				return ErrTeamNameConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1, updated_at = NOW() WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// CountAllocatedPlayers считает игроков команды живым запросом, а не
// кэшированным счётчиком.
func (r *postgresTeamRepository) CountAllocatedPlayers(ctx context.Context, exec SQLExecutor, teamID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM players WHERE current_team_id = $1 AND status = 'ALLOCATED'`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count allocated players for team %s: %w", teamID, err)
	}
	return count, nil
}

func (r *postgresTeamRepository) DebitBudget(ctx context.Context, exec SQLExecutor, teamID string, amount int64) error {
	query := `
		UPDATE teams
		SET remaining_budget = remaining_budget - $1, updated_at = NOW()
		WHERE id = $2 AND remaining_budget >= $1`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, amount, teamID)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInsufficientTeamBudget
	}
	return nil
}

func (r *postgresTeamRepository) CreditBudget(ctx context.Context, exec SQLExecutor, teamID string, amount int64) error {
	query := `
		UPDATE teams
		SET remaining_budget = remaining_budget + $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, amount, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
