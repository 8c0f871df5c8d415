package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
	"golang.org/x/sync/errgroup"
)

const recentRoundsLimit = 20

// LiveSnapshot — агрегированное состояние аукциона для публичного табло.
// Отдаётся анонимно, без аутентификации.
type LiveSnapshot struct {
	Tournament   *models.Tournament         `json:"tournament"`
	Teams        []*models.Team             `json:"teams"`
	Queue        []*models.AuctionQueueItem `json:"queue"`
	RecentRounds []*models.AuctionRound     `json:"recent_rounds"`
}

type LiveService interface {
	Snapshot(ctx context.Context, tournamentID string) (*LiveSnapshot, error)
}

type liveService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	queueRepo      repositories.QueueRepository
	roundRepo      repositories.RoundRepository
}

func NewLiveService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	queueRepo repositories.QueueRepository,
	roundRepo repositories.RoundRepository,
) LiveService {
	return &liveService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		queueRepo:      queueRepo,
		roundRepo:      roundRepo,
	}
}

func (s *liveService) Snapshot(ctx context.Context, tournamentID string) (*LiveSnapshot, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	snapshot := &LiveSnapshot{Tournament: tournament}

	// Три независимые выборки, грузим параллельно.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, gErr := s.teamRepo.ListByTournament(gctx, tournamentID, nil)
		if gErr != nil {
			return fmt.Errorf("failed to load teams: %w", gErr)
		}
		snapshot.Teams = teams
		return nil
	})
	g.Go(func() error {
		queue, gErr := s.queueRepo.List(gctx, tournamentID, false)
		if gErr != nil {
			return fmt.Errorf("failed to load queue: %w", gErr)
		}
		snapshot.Queue = queue
		return nil
	})
	g.Go(func() error {
		rounds, gErr := s.roundRepo.ListRecent(gctx, tournamentID, recentRoundsLimit)
		if gErr != nil {
			return fmt.Errorf("failed to load recent rounds: %w", gErr)
		}
		snapshot.RecentRounds = rounds
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
