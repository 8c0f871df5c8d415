package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/live"
	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
)

// defaultMaxPlayers применяется, когда у команды не задан лимит состава.
const defaultMaxPlayers = 12

// LiveBroadcaster рассылает события аукциона зрителям. Реализуется
// live.Hub; в тестах подменяется заглушкой.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message live.Message)
}

type RecordBidInput struct {
	TournamentID string `json:"tournament_id"`
	PlayerID     string `json:"player_id"`
	TeamID       string `json:"team_id"`
	Amount       int64  `json:"amount"`
}

type AuctionService interface {
	// RecordBid закрепляет игрока за командой по цене Amount. Все записи
	// (раунд, бюджет, игрок, очередь) выполняются в одной транзакции.
	// Повтор идентичного запроса возвращает существующий раунд.
	RecordBid(ctx context.Context, input RecordBidInput) (*models.AuctionRound, error)
	// UndoRound отменяет завершённый раунд: возвращает команде ровно
	// final_points, игроку — статус до продажи. Повторная отмена — no-op.
	UndoRound(ctx context.Context, roundID string) (*models.AuctionRound, error)
}

type auctionService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	queueRepo      repositories.QueueRepository
	roundRepo      repositories.RoundRepository
	hub            LiveBroadcaster
}

func NewAuctionService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	queueRepo repositories.QueueRepository,
	roundRepo repositories.RoundRepository,
	hub LiveBroadcaster,
) AuctionService {
	return &auctionService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		queueRepo:      queueRepo,
		roundRepo:      roundRepo,
		hub:            hub,
	}
}

func (s *auctionService) RecordBid(ctx context.Context, input RecordBidInput) (*models.AuctionRound, error) {
	if input.Amount < 0 {
		return nil, ErrBidAmountInvalid
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", input.TournamentID, err)
	}

	var result *models.AuctionRound

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player, txErr := s.playerRepo.GetForUpdate(ctx, exec, input.PlayerID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return txErr
		}
		if player.TournamentID != input.TournamentID {
			return ErrPlayerNotFound
		}

		existing, txErr := s.roundRepo.FindByTournamentAndPlayer(ctx, exec, input.TournamentID, input.PlayerID)
		if txErr != nil && !errors.Is(txErr, repositories.ErrRoundNotFound) {
			return txErr
		}
		hasRound := txErr == nil

		if player.Status == models.PlayerStatusAllocated {
			if !hasRound || existing.Status != models.RoundStatusCompleted {
				return ErrPlayerNotBiddable
			}
			// Повтор того же запроса (ретрай клиента): ничего не меняем.
			if existing.WinningTeamID != nil && *existing.WinningTeamID == input.TeamID &&
				existing.FinalPoints == input.Amount {
				result = existing
				return nil
			}
		} else if !player.Status.Biddable() {
			return ErrPlayerNotBiddable
		}

		if input.Amount < player.BasePrice {
			return ErrBidBelowBasePrice
		}
		if tournament.MinBidIncrement > 0 && (input.Amount-player.BasePrice)%tournament.MinBidIncrement != 0 {
			return ErrBidIncrementViolation
		}

		team, txErr := s.teamRepo.GetByID(ctx, exec, input.TeamID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return txErr
		}

		maxPlayers := team.MaxPlayers
		if maxPlayers <= 0 {
			maxPlayers = defaultMaxPlayers
		}
		alreadyOnTeam := player.CurrentTeamID != nil && *player.CurrentTeamID == team.ID
		if !alreadyOnTeam {
			count, countErr := s.teamRepo.CountAllocatedPlayers(ctx, exec, team.ID)
			if countErr != nil {
				return countErr
			}
			if count >= maxPlayers {
				return ErrTeamRosterFull
			}
		}

		// Перепродажа: сперва возвращаем деньги прежнему победителю,
		// чтобы инвариант бюджета сохранялся в пределах транзакции.
		if hasRound && existing.Status == models.RoundStatusCompleted && existing.WinningTeamID != nil {
			if txErr = s.teamRepo.CreditBudget(ctx, exec, *existing.WinningTeamID, existing.FinalPoints); txErr != nil {
				return txErr
			}
		}

		if txErr = s.teamRepo.DebitBudget(ctx, exec, team.ID, input.Amount); txErr != nil {
			if errors.Is(txErr, repositories.ErrInsufficientTeamBudget) {
				return ErrInsufficientBudget
			}
			return txErr
		}

		prevStatus := player.Status
		if hasRound {
			// Игрок мог уже быть продан: статус до самой первой продажи
			// хранится на раунде.
			prevStatus = existing.PlayerPrevStatus
		}

		if !player.Status.CanTransitionTo(models.PlayerStatusAllocated) {
			return ErrInvalidStatusTransition
		}

		round := &models.AuctionRound{
			TournamentID:     input.TournamentID,
			PlayerID:         input.PlayerID,
			StartingPrice:    player.BasePrice,
			FinalPoints:      input.Amount,
			WinningTeamID:    &team.ID,
			Status:           models.RoundStatusCompleted,
			PlayerPrevStatus: prevStatus,
		}
		if txErr = s.roundRepo.Upsert(ctx, exec, round); txErr != nil {
			return txErr
		}

		if txErr = s.playerRepo.UpdateAllocation(ctx, exec, player.ID, models.PlayerStatusAllocated, &team.ID); txErr != nil {
			return txErr
		}

		if txErr = s.queueRepo.MarkProcessed(ctx, exec, input.TournamentID, player.ID, true); txErr != nil {
			return txErr
		}

		result = round
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(live.RoomID(input.TournamentID), live.Message{
			Type:    live.EventBidRecorded,
			Payload: result,
		})
	}
	return result, nil
}

func (s *auctionService) UndoRound(ctx context.Context, roundID string) (*models.AuctionRound, error) {
	// Предварительное чтение без блокировки: нужен player_id, чтобы внутри
	// транзакции брать блокировки в том же порядке, что и RecordBid —
	// сначала игрок. Иначе встречные bid и undo по одному лоту могут
	// взаимно заблокироваться.
	known, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	var (
		result  *models.AuctionRound
		changed bool
	)

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player, txErr := s.playerRepo.GetForUpdate(ctx, exec, known.PlayerID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return txErr
		}

		// Перечитываем раунд уже под блокировкой: статус мог измениться
		// между предварительным чтением и началом транзакции.
		round, txErr := s.roundRepo.GetForUpdate(ctx, exec, roundID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrRoundNotFound) {
				return ErrRoundNotFound
			}
			return txErr
		}

		if round.Status == models.RoundStatusUndone {
			// Идемпотентность: второй undo ничего не делает.
			result = round
			return nil
		}
		if round.Status != models.RoundStatusCompleted {
			return ErrRoundNotFound
		}

		if round.WinningTeamID != nil {
			if txErr = s.teamRepo.CreditBudget(ctx, exec, *round.WinningTeamID, round.FinalPoints); txErr != nil {
				return txErr
			}
		}

		prevStatus := round.PlayerPrevStatus
		if !prevStatus.Valid() {
			prevStatus = models.PlayerStatusAvailable
		}
		if !player.Status.CanTransitionTo(prevStatus) {
			return ErrInvalidStatusTransition
		}

		if txErr = s.playerRepo.UpdateAllocation(ctx, exec, player.ID, prevStatus, nil); txErr != nil {
			return txErr
		}

		// Вернуть запись очереди в необработанные, чтобы кондуктор мог
		// переиграть лот.
		if txErr = s.queueRepo.MarkProcessed(ctx, exec, round.TournamentID, round.PlayerID, false); txErr != nil {
			return txErr
		}

		if txErr = s.roundRepo.UpdateStatus(ctx, exec, round.ID, models.RoundStatusUndone); txErr != nil {
			return txErr
		}
		round.Status = models.RoundStatusUndone
		result = round
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed && s.hub != nil {
		s.hub.BroadcastToRoom(live.RoomID(result.TournamentID), live.Message{
			Type:    live.EventBidUndone,
			Payload: result,
		})
	}
	return result, nil
}
