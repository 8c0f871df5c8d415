package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
)

type SubmitConsentInput struct {
	Email  string               `json:"email"`
	Choice models.ConsentChoice `json:"choice"`
}

type ConsentService interface {
	Get(ctx context.Context, tournamentID, email string) (*models.AuctionConsent, error)
	// Submit записывает выбор игрока; повторная отправка перезаписывает
	// предыдущий выбор для той же пары (турнир, email).
	Submit(ctx context.Context, tournamentID string, input SubmitConsentInput) (*models.AuctionConsent, error)
}

type consentService struct {
	consentRepo    repositories.ConsentRepository
	tournamentRepo repositories.TournamentRepository
}

func NewConsentService(
	consentRepo repositories.ConsentRepository,
	tournamentRepo repositories.TournamentRepository,
) ConsentService {
	return &consentService{
		consentRepo:    consentRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *consentService) Get(ctx context.Context, tournamentID, email string) (*models.AuctionConsent, error) {
	consent, err := s.consentRepo.GetByTournamentAndEmail(ctx, tournamentID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrConsentNotFound) {
			return nil, ErrConsentNotFound
		}
		return nil, err
	}
	return consent, nil
}

func (s *consentService) Submit(ctx context.Context, tournamentID string, input SubmitConsentInput) (*models.AuctionConsent, error) {
	if !input.Choice.Valid() {
		return nil, ErrConsentChoiceInvalid
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrValidationFailed
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	consent := &models.AuctionConsent{
		TournamentID: tournamentID,
		Email:        email,
		Choice:       input.Choice,
	}
	if err := s.consentRepo.Upsert(ctx, consent); err != nil {
		return nil, fmt.Errorf("failed to save auction consent: %w", err)
	}
	return consent, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
