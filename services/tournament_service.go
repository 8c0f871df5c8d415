package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
)

type CreateTournamentInput struct {
	Name             string   `json:"name"`
	Description      *string  `json:"description,omitempty"`
	SportCategories  []string `json:"sport_categories,omitempty"`
	MinBidIncrement  int64    `json:"min_bid_increment"`
	DefaultBasePrice int64    `json:"default_base_price"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID *string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo}
}

func (s *tournamentService) Create(ctx context.Context, organizerID *string, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.MinBidIncrement < 0 || input.DefaultBasePrice < 0 {
		return nil, ErrValidationFailed
	}

	tournament := &models.Tournament{
		Name:             input.Name,
		Description:      input.Description,
		SportCategories:  input.SportCategories,
		Status:           models.TournamentStatusDraft,
		OrganizerID:      organizerID,
		MinBidIncrement:  input.MinBidIncrement,
		DefaultBasePrice: input.DefaultBasePrice,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	switch status {
	case models.TournamentStatusDraft, models.TournamentStatusRegistration,
		models.TournamentStatusAuction, models.TournamentStatusCompleted:
	default:
		return ErrValidationFailed
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}
