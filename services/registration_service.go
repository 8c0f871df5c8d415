package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
	"github.com/go-playground/validator/v10"
)

// adultAge — возраст, с которого не требуются данные опекуна.
const adultAge = 18

// ValidationError несёт по-полевые ошибки валидации заявки.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

type RegisterPlayerInput struct {
	SportCategory string                  `json:"sport_category" validate:"required"`
	FullName      string                  `json:"full_name" validate:"required,min=2,max=120"`
	Email         string                  `json:"email" validate:"required,email"`
	Phone         *string                 `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	HeightM       *float64                `json:"height_m,omitempty" validate:"omitempty,gte=1.0,lte=2.5"`
	DateOfBirth   *time.Time              `json:"date_of_birth,omitempty"`
	LastPlayed    models.LastPlayedStatus `json:"last_played" validate:"required,oneof=this_season last_season over_a_year never"`
	GuardianName  *string                 `json:"guardian_name,omitempty"`
	GuardianPhone *string                 `json:"guardian_phone,omitempty"`
}

// PromotionResult — итог зачисления одной заявки в ростер.
type PromotionResult struct {
	RegistrationID string  `json:"registration_id"`
	PlayerID       *string `json:"player_id,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type RegistrationService interface {
	Register(ctx context.Context, tournamentID string, input RegisterPlayerInput) (*models.TournamentRegistration, error)
	List(ctx context.Context, tournamentID string, verifiedOnly bool) ([]*models.TournamentRegistration, error)
	Verify(ctx context.Context, registrationID string) error
	// PromoteRoster копирует проверенные, ещё не зачисленные заявки в
	// таблицу игроков. Каждая заявка обрабатывается в своей транзакции,
	// так что одна плохая строка не валит весь пакет. Повторный вызов
	// идемпотентен благодаря promoted_player_id.
	PromoteRoster(ctx context.Context, tournamentID string, basePriceOverride *int64) ([]PromotionResult, error)
}

type registrationService struct {
	txManager        repositories.TxManager
	registrationRepo repositories.RegistrationRepository
	playerRepo       repositories.PlayerRepository
	tournamentRepo   repositories.TournamentRepository
	validate         *validator.Validate
}

func NewRegistrationService(
	txManager repositories.TxManager,
	registrationRepo repositories.RegistrationRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
) RegistrationService {
	return &registrationService{
		txManager:        txManager,
		registrationRepo: registrationRepo,
		playerRepo:       playerRepo,
		tournamentRepo:   tournamentRepo,
		validate:         validator.New(),
	}
}

func (s *registrationService) Register(ctx context.Context, tournamentID string, input RegisterPlayerInput) (*models.TournamentRegistration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	reg := &models.TournamentRegistration{
		TournamentID:  tournamentID,
		SportCategory: input.SportCategory,
		FullName:      input.FullName,
		Email:         input.Email,
		Phone:         input.Phone,
		HeightM:       input.HeightM,
		DateOfBirth:   input.DateOfBirth,
		LastPlayed:    input.LastPlayed,
		GuardianName:  input.GuardianName,
		GuardianPhone: input.GuardianPhone,
	}

	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationEmailConflict) {
			return nil, ErrRegistrationEmailConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) validateInput(input RegisterPlayerInput) error {
	fields := make(map[string]string)

	if err := s.validate.Struct(input); err != nil {
		var invalidErr *validator.InvalidValidationError
		if errors.As(err, &invalidErr) {
			return err
		}
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fe := range validationErrs {
				fields[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
			}
		}
	}

	// Для несовершеннолетних обязательны данные опекуна.
	if input.DateOfBirth != nil && ageAt(*input.DateOfBirth, time.Now()) < adultAge {
		if input.GuardianName == nil || *input.GuardianName == "" {
			fields["GuardianName"] = "guardian name is required for youth registrations"
		}
		if input.GuardianPhone == nil || *input.GuardianPhone == "" {
			fields["GuardianPhone"] = "guardian phone is required for youth registrations"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

func (s *registrationService) List(ctx context.Context, tournamentID string, verifiedOnly bool) ([]*models.TournamentRegistration, error) {
	regs, err := s.registrationRepo.ListByTournament(ctx, tournamentID, verifiedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %s: %w", tournamentID, err)
	}
	return regs, nil
}

func (s *registrationService) Verify(ctx context.Context, registrationID string) error {
	err := s.registrationRepo.SetVerified(ctx, registrationID, true)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return nil
}

func (s *registrationService) PromoteRoster(ctx context.Context, tournamentID string, basePriceOverride *int64) ([]PromotionResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	regs, err := s.registrationRepo.ListPromotable(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotable registrations: %w", err)
	}

	basePrice := tournament.DefaultBasePrice
	if basePriceOverride != nil {
		basePrice = *basePriceOverride
	}

	results := make([]PromotionResult, 0, len(regs))
	for _, reg := range regs {
		result := PromotionResult{RegistrationID: reg.ID}

		promoteErr := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			player := &models.Player{
				TournamentID:  tournamentID,
				SportCategory: reg.SportCategory,
				Name:          reg.FullName,
				BasePrice:     basePrice,
				Status:        models.PlayerStatusAvailable,
			}
			if txErr := s.playerRepo.Create(ctx, exec, player); txErr != nil {
				return txErr
			}
			result.PlayerID = &player.ID
			return s.registrationRepo.SetPromoted(ctx, exec, reg.ID, player.ID)
		})
		if promoteErr != nil {
			result.PlayerID = nil
			result.Error = promoteErr.Error()
		}
		results = append(results, result)
	}
	return results, nil
}
