package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/sports-auction/repositories"
	"golang.org/x/sync/errgroup"
)

const reconcileConcurrency = 4

// TeamDrift — расхождение между остатком бюджета команды и суммой её
// завершённых раундов. Ненулевой Drift означает, что инвариант
// remaining = initial - sum(completed rounds) нарушен.
type TeamDrift struct {
	TournamentID    string `json:"tournament_id"`
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	InitialBudget   int64  `json:"initial_budget"`
	RemainingBudget int64  `json:"remaining_budget"`
	SpentCompleted  int64  `json:"spent_completed"`
	Drift           int64  `json:"drift"`
}

type ReconcileService interface {
	// ReconcileAll сверяет бюджеты всех команд всех турниров и
	// возвращает найденные расхождения. Ничего не чинит: отчёт
	// предназначен для оператора.
	ReconcileAll(ctx context.Context) ([]TeamDrift, error)
	ReconcileTournament(ctx context.Context, tournamentID string) ([]TeamDrift, error)
}

type reconcileService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	roundRepo      repositories.RoundRepository
	logger         *slog.Logger
}

func NewReconcileService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	roundRepo repositories.RoundRepository,
	logger *slog.Logger,
) ReconcileService {
	return &reconcileService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		roundRepo:      roundRepo,
		logger:         logger,
	}
}

func (s *reconcileService) ReconcileAll(ctx context.Context) ([]TeamDrift, error) {
	tournamentIDs, err := s.tournamentRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for reconciliation: %w", err)
	}

	var (
		mu     sync.Mutex
		drifts []TeamDrift
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for _, tournamentID := range tournamentIDs {
		tournamentID := tournamentID
		g.Go(func() error {
			found, gErr := s.ReconcileTournament(gctx, tournamentID)
			if gErr != nil {
				return gErr
			}
			mu.Lock()
			drifts = append(drifts, found...)
			mu.Unlock()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return drifts, nil
}

func (s *reconcileService) ReconcileTournament(ctx context.Context, tournamentID string) ([]TeamDrift, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}

	var drifts []TeamDrift
	for _, team := range teams {
		spent, sumErr := s.roundRepo.SumCompletedByTeam(ctx, team.ID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to sum completed rounds for team %s: %w", team.ID, sumErr)
		}

		drift := team.RemainingBudget - (team.InitialBudget - spent)
		if drift == 0 {
			continue
		}

		s.logger.Warn("budget drift detected",
			slog.String("tournament_id", tournamentID),
			slog.String("team_id", team.ID),
			slog.String("team_name", team.Name),
			slog.Int64("remaining_budget", team.RemainingBudget),
			slog.Int64("spent_completed", spent),
			slog.Int64("drift", drift),
		)
		drifts = append(drifts, TeamDrift{
			TournamentID:    tournamentID,
			TeamID:          team.ID,
			TeamName:        team.Name,
			InitialBudget:   team.InitialBudget,
			RemainingBudget: team.RemainingBudget,
			SpentCompleted:  spent,
			Drift:           drift,
		})
	}
	return drifts, nil
}
