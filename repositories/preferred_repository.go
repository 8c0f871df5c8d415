package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-auction/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrPreferredNotFound      = errors.New("preferred player entry not found")
	ErrPreferredPlayerInvalid = errors.New("preferred player conflict or invalid")
)

type PreferredPlayerRepository interface {
	ListByTeam(ctx context.Context, teamID string) ([]*models.PreferredPlayer, error)
	Upsert(ctx context.Context, entry *models.PreferredPlayer) error
	Delete(ctx context.Context, teamID, playerID string) error
}

type postgresPreferredPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPreferredPlayerRepository(db *sql.DB) PreferredPlayerRepository {
	return &postgresPreferredPlayerRepository{db: db}
}

func (r *postgresPreferredPlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.PreferredPlayer, error) {
	query := `
		SELECT pp.id, pp.team_id, pp.player_id, pp.max_bid, pp.priority, pp.notes, pp.created_at,
			p.id, p.tournament_id, p.sport_category, p.name, p.base_price, p.status, p.current_team_id,
			p.category_id, p.skill_level, p.player_position, p.photo_key, p.created_at, p.updated_at
		FROM preferred_players pp
		JOIN players p ON pp.player_id = p.id
		WHERE pp.team_id = $1
		ORDER BY pp.priority ASC, pp.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.PreferredPlayer, 0)
	for rows.Next() {
		entry := &models.PreferredPlayer{}
		player := &models.Player{}
		scanErr := rows.Scan(
			&entry.ID,
			&entry.TeamID,
			&entry.PlayerID,
			&entry.MaxBid,
			&entry.Priority,
			&entry.Notes,
			&entry.CreatedAt,
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
		if scanErr != nil {
			return nil, scanErr
		}
		entry.Player = player
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresPreferredPlayerRepository) Upsert(ctx context.Context, entry *models.PreferredPlayer) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO preferred_players (id, team_id, player_id, max_bid, priority, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, player_id) DO UPDATE SET
			max_bid = EXCLUDED.max_bid,
			priority = EXCLUDED.priority,
			notes = EXCLUDED.notes
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.TeamID,
		entry.PlayerID,
		entry.MaxBid,
		entry.Priority,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "preferred_players_player_id_fkey" {
				return ErrPreferredPlayerInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPreferredPlayerRepository) Delete(ctx context.Context, teamID, playerID string) error {
	query := `DELETE FROM preferred_players WHERE team_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPreferredNotFound)
}
