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
	ErrQueueItemNotFound      = errors.New("auction queue item not found")
	ErrQueuePlayerConflict    = errors.New("player already has an unprocessed queue entry for this tournament")
	ErrQueuePositionConflict  = errors.New("queue position already taken")
	ErrQueuePlayerInvalid     = errors.New("queue player conflict or invalid")
	ErrQueueTournamentInvalid = errors.New("queue tournament conflict or invalid")
)

type QueueRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, item *models.AuctionQueueItem) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.AuctionQueueItem, error)
	// NextPosition выдаёт MAX(queue_position)+1 по турниру и категории.
	// Вызывать только под блокировкой строки турнира.
	NextPosition(ctx context.Context, exec SQLExecutor, tournamentID, sportCategory string) (int, error)
	FindUnprocessedByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.AuctionQueueItem, error)
	FindByPosition(ctx context.Context, exec SQLExecutor, tournamentID, sportCategory string, position int) (*models.AuctionQueueItem, error)
	List(ctx context.Context, tournamentID string, includeProcessed bool) ([]*models.AuctionQueueItem, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	UpdatePosition(ctx context.Context, exec SQLExecutor, id string, position int) error
	MarkProcessed(ctx context.Context, exec SQLExecutor, tournamentID, playerID string, processed bool) error
}

type postgresQueueRepository struct {
	db *sql.DB
}

func NewPostgresQueueRepository(db *sql.DB) QueueRepository {
	return &postgresQueueRepository{db: db}
}

func (r *postgresQueueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresQueueRepository) Insert(ctx context.Context, exec SQLExecutor, item *models.AuctionQueueItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `
		INSERT INTO auction_queue (id, tournament_id, sport_category, player_id, queue_position, is_processed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		item.ID,
		item.TournamentID,
		item.SportCategory,
		item.PlayerID,
		item.QueuePosition,
		item.IsProcessed,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "auction_queue_unprocessed_player_key" {
					return ErrQueuePlayerConflict
				}
				if pqErr.Constraint == "auction_queue_position_key" {
					return ErrQueuePositionConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "auction_queue_player_id_fkey" {
					return ErrQueuePlayerInvalid
				}
				if pqErr.Constraint == "auction_queue_tournament_id_fkey" {
					return ErrQueueTournamentInvalid
				}
			}
		}
		return err
	}
	return nil
}

const queueColumns = `id, tournament_id, sport_category, player_id, queue_position, is_processed, created_at, updated_at`

func scanQueueItem(row interface{ Scan(...interface{}) error }) (*models.AuctionQueueItem, error) {
	item := &models.AuctionQueueItem{}
	err := row.Scan(
		&item.ID,
		&item.TournamentID,
		&item.SportCategory,
		&item.PlayerID,
		&item.QueuePosition,
		&item.IsProcessed,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresQueueRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.AuctionQueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM auction_queue WHERE id = $1`
	item, err := scanQueueItem(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueItemNotFound
		}
		return nil, fmt.Errorf("failed to scan queue item: %w", err)
	}
	return item, nil
}

func (r *postgresQueueRepository) NextPosition(ctx context.Context, exec SQLExecutor, tournamentID, sportCategory string) (int, error) {
	var next int
	query := `
		SELECT COALESCE(MAX(queue_position), 0) + 1
		FROM auction_queue
		WHERE tournament_id = $1 AND sport_category = $2`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, sportCategory).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next queue position: %w", err)
	}
	return next, nil
}

func (r *postgresQueueRepository) FindUnprocessedByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.AuctionQueueItem, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM auction_queue
		WHERE tournament_id = $1 AND player_id = $2 AND NOT is_processed`
	item, err := scanQueueItem(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresQueueRepository) FindByPosition(ctx context.Context, exec SQLExecutor, tournamentID, sportCategory string, position int) (*models.AuctionQueueItem, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM auction_queue
		WHERE tournament_id = $1 AND sport_category = $2 AND queue_position = $3`
	item, err := scanQueueItem(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, sportCategory, position))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// List возвращает очередь вместе с атрибутами игроков, упорядоченную по
// queue_position; created_at — только тай-брейк.
func (r *postgresQueueRepository) List(ctx context.Context, tournamentID string, includeProcessed bool) ([]*models.AuctionQueueItem, error) {
	query := `
		SELECT q.id, q.tournament_id, q.sport_category, q.player_id, q.queue_position, q.is_processed,
			q.created_at, q.updated_at,
			p.id, p.tournament_id, p.sport_category, p.name, p.base_price, p.status, p.current_team_id,
			p.category_id, p.skill_level, p.player_position, p.photo_key, p.created_at, p.updated_at
		FROM auction_queue q
		JOIN players p ON q.player_id = p.id
		WHERE q.tournament_id = $1
		  AND ($2 OR NOT q.is_processed)
		ORDER BY q.queue_position ASC, q.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, includeProcessed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.AuctionQueueItem, 0)
	for rows.Next() {
		item := &models.AuctionQueueItem{}
		player := &models.Player{}
		scanErr := rows.Scan(
			&item.ID,
			&item.TournamentID,
			&item.SportCategory,
			&item.PlayerID,
			&item.QueuePosition,
			&item.IsProcessed,
			&item.CreatedAt,
			&item.UpdatedAt,
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
		item.Player = player
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresQueueRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM auction_queue WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrQueueItemNotFound)
}

func (r *postgresQueueRepository) UpdatePosition(ctx context.Context, exec SQLExecutor, id string, position int) error {
	query := `UPDATE auction_queue SET queue_position = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, position, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "auction_queue_position_key" {
				return ErrQueuePositionConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrQueueItemNotFound)
}

func (r *postgresQueueRepository) MarkProcessed(ctx context.Context, exec SQLExecutor, tournamentID, playerID string, processed bool) error {
	// Отсутствие записи в очереди не ошибка: ставку можно записать и на
	// игрока, которого в очередь не ставили.
	query := `
		UPDATE auction_queue
		SET is_processed = $1, updated_at = NOW()
		WHERE tournament_id = $2 AND player_id = $3 AND is_processed = NOT $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, processed, tournamentID, playerID)
	return err
}
