package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
	"github.com/Dosada05/sports-auction/storage"
)

type CreateTeamInput struct {
	TournamentID  string  `json:"tournament_id"`
	SportCategory string  `json:"sport_category"`
	Name          string  `json:"name"`
	OwnerName     string  `json:"owner_name"`
	OwnerID       *string `json:"owner_id,omitempty"`
	InitialBudget int64   `json:"initial_budget"`
	MinPlayers    int     `json:"min_players"`
	MaxPlayers    int     `json:"max_players"`
}

type UpdateTeamInput struct {
	Name       string  `json:"name"`
	OwnerName  string  `json:"owner_name"`
	OwnerID    *string `json:"owner_id,omitempty"`
	MinPlayers int     `json:"min_players"`
	MaxPlayers int     `json:"max_players"`
}

type UpsertPreferredInput struct {
	PlayerID string  `json:"player_id"`
	MaxBid   int64   `json:"max_bid"`
	Priority int     `json:"priority"`
	Notes    *string `json:"notes,omitempty"`
}

// Identity — проверенная личность текущего пользователя из JWT.
type Identity struct {
	UserID string
	Role   models.UserRole
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, identity Identity, id string, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	UploadLogo(ctx context.Context, identity Identity, id string, contentType string, data io.Reader) (*models.Team, error)

	ListPreferred(ctx context.Context, identity Identity, teamID string) ([]*models.PreferredPlayer, error)
	UpsertPreferred(ctx context.Context, identity Identity, teamID string, input UpsertPreferredInput) (*models.PreferredPlayer, error)
	DeletePreferred(ctx context.Context, identity Identity, teamID, playerID string) error
}

type teamService struct {
	teamRepo      repositories.TeamRepository
	playerRepo    repositories.PlayerRepository
	preferredRepo repositories.PreferredPlayerRepository
	uploader      storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	preferredRepo repositories.PreferredPlayerRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:      teamRepo,
		playerRepo:    playerRepo,
		preferredRepo: preferredRepo,
		uploader:      uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.InitialBudget < 0 {
		return nil, ErrBudgetInvalid
	}

	maxPlayers := input.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}

	team := &models.Team{
		TournamentID:    input.TournamentID,
		SportCategory:   input.SportCategory,
		Name:            input.Name,
		OwnerName:       input.OwnerName,
		OwnerID:         input.OwnerID,
		InitialBudget:   input.InitialBudget,
		RemainingBudget: input.InitialBudget,
		MinPlayers:      input.MinPlayers,
		MaxPlayers:      maxPlayers,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	players, err := s.playerRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for team %s: %w", id, err)
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		team.Players = append(team.Players, *p)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, sportCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}
	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, identity Identity, id string, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.authorizeOwner(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	team.Name = input.Name
	team.OwnerName = input.OwnerName
	if input.OwnerID != nil {
		team.OwnerID = input.OwnerID
	}
	team.MinPlayers = input.MinPlayers
	if input.MaxPlayers > 0 {
		team.MaxPlayers = input.MaxPlayers
	}

	if err = s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id string) error {
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, identity Identity, id string, contentType string, data io.Reader) (*models.Team, error) {
	team, err := s.authorizeOwner(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	key := fmt.Sprintf("teams/%s/logo", team.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err = s.teamRepo.UpdateLogoKey(ctx, team.ID, &result.Key); err != nil {
		return nil, err
	}
	team.LogoKey = &result.Key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListPreferred(ctx context.Context, identity Identity, teamID string) ([]*models.PreferredPlayer, error) {
	if _, err := s.authorizeOwner(ctx, identity, teamID); err != nil {
		return nil, err
	}
	entries, err := s.preferredRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferred players for team %s: %w", teamID, err)
	}
	return entries, nil
}

func (s *teamService) UpsertPreferred(ctx context.Context, identity Identity, teamID string, input UpsertPreferredInput) (*models.PreferredPlayer, error) {
	if _, err := s.authorizeOwner(ctx, identity, teamID); err != nil {
		return nil, err
	}
	if input.MaxBid < 0 {
		return nil, ErrBidAmountInvalid
	}

	entry := &models.PreferredPlayer{
		TeamID:   teamID,
		PlayerID: input.PlayerID,
		MaxBid:   input.MaxBid,
		Priority: input.Priority,
		Notes:    input.Notes,
	}
	if err := s.preferredRepo.Upsert(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrPreferredPlayerInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *teamService) DeletePreferred(ctx context.Context, identity Identity, teamID, playerID string) error {
	if _, err := s.authorizeOwner(ctx, identity, teamID); err != nil {
		return err
	}
	if err := s.preferredRepo.Delete(ctx, teamID, playerID); err != nil {
		if errors.Is(err, repositories.ErrPreferredNotFound) {
			return ErrPreferredNotFound
		}
		return err
	}
	return nil
}

// authorizeOwner — единая проверка «владелец команды или админ».
func (s *teamService) authorizeOwner(ctx context.Context, identity Identity, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if identity.Role == models.RoleAdmin {
		return team, nil
	}
	if team.OwnerID != nil && *team.OwnerID == identity.UserID {
		return team, nil
	}
	return nil, ErrForbiddenOperation
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}
