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

type PlayerService interface {
	GetByID(ctx context.Context, id string) (*models.Player, error)
	// ListAvailable — игроки, которых можно поставить в очередь:
	// AVAILABLE или UNALLOCATED и без необработанной записи в очереди.
	ListAvailable(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Player, error)
	UploadPhoto(ctx context.Context, id string, contentType string, data io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *playerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) ListAvailable(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Player, error) {
	players, err := s.playerRepo.ListAvailable(ctx, tournamentID, sportCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list available players for tournament %s: %w", tournamentID, err)
	}
	for _, player := range players {
		s.populatePhotoURL(player)
	}
	return players, nil
}

func (s *playerService) UploadPhoto(ctx context.Context, id string, contentType string, data io.Reader) (*models.Player, error) {
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	key := fmt.Sprintf("players/%s/photo", player.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}

	if err = s.playerRepo.UpdatePhotoKey(ctx, player.ID, &result.Key); err != nil {
		return nil, err
	}
	player.PhotoKey = &result.Key
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) populatePhotoURL(player *models.Player) {
	if s.uploader == nil || player.PhotoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*player.PhotoKey); url != "" {
		player.PhotoURL = &url
	}
}
