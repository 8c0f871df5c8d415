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
	ErrRoundNotFound      = errors.New("auction round not found")
	ErrRoundPlayerInvalid = errors.New("auction round player conflict or invalid")
	ErrRoundTeamInvalid   = errors.New("auction round team conflict or invalid")
)

type RoundRepository interface {
	// Upsert создаёт раунд для (tournament_id, player_id) либо обновляет
	// существующий. Уникальный индекс гарантирует не более одного раунда
	// на игрока в турнире.
	Upsert(ctx context.Context, exec SQLExecutor, round *models.AuctionRound) error
	GetByID(ctx context.Context, id string) (*models.AuctionRound, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.AuctionRound, error)
	FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.AuctionRound, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.RoundStatus) error
	// ListRecent возвращает последние раунды с именами игрока и команды
	// для публичного табло.
	ListRecent(ctx context.Context, tournamentID string, limit int) ([]*models.AuctionRound, error)
	// SumCompletedByTeam — фактические траты команды по завершённым
	// раундам; используется сверкой бюджетов.
	SumCompletedByTeam(ctx context.Context, teamID string) (int64, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundColumns = `id, tournament_id, player_id, starting_price, final_points, winning_team_id,
	status, player_prev_status, created_at, updated_at`

func scanRound(row interface{ Scan(...interface{}) error }) (*models.AuctionRound, error) {
	round := &models.AuctionRound{}
	err := row.Scan(
		&round.ID,
		&round.TournamentID,
		&round.PlayerID,
		&round.StartingPrice,
		&round.FinalPoints,
		&round.WinningTeamID,
		&round.Status,
		&round.PlayerPrevStatus,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) Upsert(ctx context.Context, exec SQLExecutor, round *models.AuctionRound) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}

	query := `
		INSERT INTO auction_rounds (id, tournament_id, player_id, starting_price, final_points,
			winning_team_id, status, player_prev_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tournament_id, player_id) DO UPDATE SET
			final_points = EXCLUDED.final_points,
			winning_team_id = EXCLUDED.winning_team_id,
			status = EXCLUDED.status,
			player_prev_status = EXCLUDED.player_prev_status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		round.ID,
		round.TournamentID,
		round.PlayerID,
		round.StartingPrice,
		round.FinalPoints,
		round.WinningTeamID,
		round.Status,
		round.PlayerPrevStatus,
	).Scan(&round.ID, &round.CreatedAt, &round.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				switch pqErr.Constraint {
				case "auction_rounds_player_id_fkey":
					return ErrRoundPlayerInvalid
				case "auction_rounds_winning_team_id_fkey":
					return ErrRoundTeamInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id string) (*models.AuctionRound, error) {
	query := `SELECT ` + roundColumns + ` FROM auction_rounds WHERE id = $1`
	round, err := scanRound(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan auction round: %w", err)
	}
	return round, nil
}

func (r *postgresRoundRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.AuctionRound, error) {
	query := `SELECT ` + roundColumns + ` FROM auction_rounds WHERE id = $1 FOR UPDATE`
	round, err := scanRound(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan auction round for update: %w", err)
	}
	return round, nil
}

func (r *postgresRoundRepository) FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.AuctionRound, error) {
	query := `SELECT ` + roundColumns + ` FROM auction_rounds WHERE tournament_id = $1 AND player_id = $2`
	round, err := scanRound(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.RoundStatus) error {
	query := `UPDATE auction_rounds SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) ListRecent(ctx context.Context, tournamentID string, limit int) ([]*models.AuctionRound, error) {
	query := `
		SELECT r.id, r.tournament_id, r.player_id, r.starting_price, r.final_points, r.winning_team_id,
			r.status, r.player_prev_status, r.created_at, r.updated_at,
			p.name, t.name
		FROM auction_rounds r
		JOIN players p ON r.player_id = p.id
		LEFT JOIN teams t ON r.winning_team_id = t.id
		WHERE r.tournament_id = $1
		ORDER BY r.updated_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.AuctionRound, 0)
	for rows.Next() {
		round := &models.AuctionRound{}
		scanErr := rows.Scan(
			&round.ID,
			&round.TournamentID,
			&round.PlayerID,
			&round.StartingPrice,
			&round.FinalPoints,
			&round.WinningTeamID,
			&round.Status,
			&round.PlayerPrevStatus,
			&round.CreatedAt,
			&round.UpdatedAt,
			&round.PlayerName,
			&round.WinningTeamName,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) SumCompletedByTeam(ctx context.Context, teamID string) (int64, error) {
	var sum int64
	query := `
		SELECT COALESCE(SUM(final_points), 0)
		FROM auction_rounds
		WHERE winning_team_id = $1 AND status = 'COMPLETED'`
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed rounds for team %s: %w", teamID, err)
	}
	return sum, nil
}
