package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/live"
	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
)

// BatchEnqueueResult — итог постановки одного игрока при пакетной
// операции. Пакет не атомарен: ошибка одного игрока не откатывает
// остальных.
type BatchEnqueueResult struct {
	PlayerID string                   `json:"player_id"`
	Item     *models.AuctionQueueItem `json:"item,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

type QueueService interface {
	// Enqueue ставит игрока в хвост очереди турнира. Позиция выдаётся
	// под блокировкой строки турнира, поэтому гонки за MAX+1 нет.
	Enqueue(ctx context.Context, tournamentID, playerID string) (*models.AuctionQueueItem, error)
	BatchEnqueue(ctx context.Context, tournamentID string, playerIDs []string) []BatchEnqueueResult
	Remove(ctx context.Context, queueItemID string) error
	// Reorder меняет позицию записи; если позиция занята, записи
	// меняются местами в одной транзакции.
	Reorder(ctx context.Context, queueItemID string, newPosition int) error
	List(ctx context.Context, tournamentID string, includeProcessed bool) ([]*models.AuctionQueueItem, error)
}

type queueService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	queueRepo      repositories.QueueRepository
	hub            LiveBroadcaster
}

func NewQueueService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	queueRepo repositories.QueueRepository,
	hub LiveBroadcaster,
) QueueService {
	return &queueService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		queueRepo:      queueRepo,
		hub:            hub,
	}
}

func (s *queueService) Enqueue(ctx context.Context, tournamentID, playerID string) (*models.AuctionQueueItem, error) {
	var item *models.AuctionQueueItem

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.tournamentRepo.LockForUpdate(ctx, exec, tournamentID); txErr != nil {
			if errors.Is(txErr, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return txErr
		}

		player, txErr := s.playerRepo.GetForUpdate(ctx, exec, playerID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return txErr
		}
		if player.TournamentID != tournamentID {
			return ErrPlayerNotFound
		}
		if player.Status != models.PlayerStatusAvailable && player.Status != models.PlayerStatusUnallocated {
			return ErrPlayerNotQueueable
		}

		_, txErr = s.queueRepo.FindUnprocessedByPlayer(ctx, exec, tournamentID, playerID)
		if txErr == nil {
			return ErrPlayerAlreadyQueued
		}
		if !errors.Is(txErr, repositories.ErrQueueItemNotFound) {
			return txErr
		}

		position, txErr := s.queueRepo.NextPosition(ctx, exec, tournamentID, player.SportCategory)
		if txErr != nil {
			return txErr
		}

		item = &models.AuctionQueueItem{
			TournamentID:  tournamentID,
			SportCategory: player.SportCategory,
			PlayerID:      playerID,
			QueuePosition: position,
		}
		if txErr = s.queueRepo.Insert(ctx, exec, item); txErr != nil {
			if errors.Is(txErr, repositories.ErrQueuePlayerConflict) {
				return ErrPlayerAlreadyQueued
			}
			return txErr
		}

		if !player.Status.CanTransitionTo(models.PlayerStatusInAuction) {
			return ErrInvalidStatusTransition
		}
		return s.playerRepo.UpdateStatus(ctx, exec, playerID, models.PlayerStatusInAuction)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastQueueUpdate(tournamentID)
	return item, nil
}

func (s *queueService) BatchEnqueue(ctx context.Context, tournamentID string, playerIDs []string) []BatchEnqueueResult {
	results := make([]BatchEnqueueResult, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		item, err := s.Enqueue(ctx, tournamentID, playerID)
		result := BatchEnqueueResult{PlayerID: playerID, Item: item}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (s *queueService) Remove(ctx context.Context, queueItemID string) error {
	var tournamentID string

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, txErr := s.queueRepo.GetByID(ctx, exec, queueItemID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrQueueItemNotFound) {
				return ErrQueueItemNotFound
			}
			return txErr
		}
		if item.IsProcessed {
			return ErrQueueItemProcessed
		}
		tournamentID = item.TournamentID

		if txErr = s.queueRepo.Delete(ctx, exec, item.ID); txErr != nil {
			return txErr
		}

		player, txErr := s.playerRepo.GetForUpdate(ctx, exec, item.PlayerID)
		if txErr != nil {
			return txErr
		}
		// Игрок возвращается в общий пул.
		if player.Status == models.PlayerStatusInAuction {
			return s.playerRepo.UpdateStatus(ctx, exec, player.ID, models.PlayerStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcastQueueUpdate(tournamentID)
	return nil
}

func (s *queueService) Reorder(ctx context.Context, queueItemID string, newPosition int) error {
	if newPosition <= 0 {
		return ErrQueuePositionInvalid
	}

	var tournamentID string

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		item, txErr := s.queueRepo.GetByID(ctx, exec, queueItemID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrQueueItemNotFound) {
				return ErrQueueItemNotFound
			}
			return txErr
		}
		if item.IsProcessed {
			return ErrQueueItemProcessed
		}
		tournamentID = item.TournamentID

		if txErr = s.tournamentRepo.LockForUpdate(ctx, exec, item.TournamentID); txErr != nil {
			return txErr
		}
		if item.QueuePosition == newPosition {
			return nil
		}

		occupant, txErr := s.queueRepo.FindByPosition(ctx, exec, item.TournamentID, item.SportCategory, newPosition)
		switch {
		case txErr == nil && occupant.ID != item.ID:
			// Обмен позициями; уникальный индекс отложенный, поэтому
			// промежуточный дубликат внутри транзакции допустим.
			if txErr = s.queueRepo.UpdatePosition(ctx, exec, occupant.ID, item.QueuePosition); txErr != nil {
				return txErr
			}
		case txErr != nil && !errors.Is(txErr, repositories.ErrQueueItemNotFound):
			return txErr
		}

		return s.queueRepo.UpdatePosition(ctx, exec, item.ID, newPosition)
	})
	if err != nil {
		return err
	}

	s.broadcastQueueUpdate(tournamentID)
	return nil
}

func (s *queueService) List(ctx context.Context, tournamentID string, includeProcessed bool) ([]*models.AuctionQueueItem, error) {
	items, err := s.queueRepo.List(ctx, tournamentID, includeProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to list auction queue for tournament %s: %w", tournamentID, err)
	}
	return items, nil
}

func (s *queueService) broadcastQueueUpdate(tournamentID string) {
	if s.hub == nil || tournamentID == "" {
		return
	}
	s.hub.BroadcastToRoom(live.RoomID(tournamentID), live.Message{
		Type:    live.EventQueueUpdated,
		Payload: map[string]string{"tournament_id": tournamentID},
	})
}
