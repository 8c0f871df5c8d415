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
	ErrPlayerNotFound          = errors.New("player not found")
	ErrPlayerTournamentInvalid = errors.New("player tournament conflict or invalid")
	ErrPlayerTeamInvalid       = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	// GetForUpdate читает строку игрока под блокировкой FOR UPDATE.
	// Обязателен внутри транзакции записи ставки.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error)
	// ListAvailable — пул кандидатов на очередь: AVAILABLE/UNALLOCATED,
	// без необработанной записи в очереди этого турнира.
	ListAvailable(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Player, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.PlayerStatus) error
	UpdateAllocation(ctx context.Context, exec SQLExecutor, id string, status models.PlayerStatus, teamID *string) error
	UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, tournament_id, sport_category, name, base_price, status, current_team_id,
	category_id, skill_level, player_position, photo_key, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	player := &models.Player{}
	err := row.Scan(
		&player.ID,
		&player.TournamentID,
		&player.SportCategory,
		&player.Name,
		&player.BasePrice,
		&player.Status,
		&player.CurrentTeamID,
		&player.CategoryID,
		&player.SkillLevel,
		&player.PlayerPosition,
		&player.PhotoKey,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.Status == "" {
		player.Status = models.PlayerStatusAvailable
	}

	query := `
		INSERT INTO players (id, tournament_id, sport_category, name, base_price, status,
			current_team_id, category_id, skill_level, player_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		player.ID,
		player.TournamentID,
		player.SportCategory,
		player.Name,
		player.BasePrice,
		player.Status,
		player.CurrentTeamID,
		player.CategoryID,
		player.SkillLevel,
		player.PlayerPosition,
	).Scan(&player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				switch pqErr.Constraint {
				case "players_tournament_id_fkey":
					return ErrPlayerTournamentInvalid
				case "players_current_team_id_fkey":
					return ErrPlayerTeamInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1 FOR UPDATE`
	player, err := scanPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player for update: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListAvailable(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Player, error) {
	// Один запрос вместо двух статусных выборок с объединением на клиенте.
	query := `
		SELECT p.id, p.tournament_id, p.sport_category, p.name, p.base_price, p.status, p.current_team_id,
			p.category_id, p.skill_level, p.player_position, p.photo_key, p.created_at, p.updated_at,
			c.name
		FROM players p
		LEFT JOIN player_categories c ON p.category_id = c.id
		WHERE p.tournament_id = $1
		  AND ($2::text IS NULL OR p.sport_category = $2)
		  AND p.status = ANY($3::player_status[])
		  AND NOT EXISTS (
			SELECT 1 FROM auction_queue q
			WHERE q.tournament_id = p.tournament_id
			  AND q.player_id = p.id
			  AND NOT q.is_processed
		  )
		ORDER BY p.name ASC`

	statuses := pq.Array([]string{
		string(models.PlayerStatusAvailable),
		string(models.PlayerStatusUnallocated),
	})

	rows, err := r.db.QueryContext(ctx, query, tournamentID, sportCategory, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player := &models.Player{}
		scanErr := rows.Scan(
			&player.ID,
			&player.TournamentID,
			&player.SportCategory,
			&player.Name,
			&player.BasePrice,
			&player.Status,
			&player.CurrentTeamID,
			&player.CategoryID,
			&player.SkillLevel,
			&player.PlayerPosition,
			&player.PhotoKey,
			&player.CreatedAt,
			&player.UpdatedAt,
			&player.CategoryName,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE current_team_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.PlayerStatus) error {
	query := `UPDATE players SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAllocation(ctx context.Context, exec SQLExecutor, id string, status models.PlayerStatus, teamID *string) error {
	query := `UPDATE players SET status = $1, current_team_id = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, teamID, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "players_current_team_id_fkey" {
				return ErrPlayerTeamInvalid
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET photo_key = $1, updated_at = NOW() WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
