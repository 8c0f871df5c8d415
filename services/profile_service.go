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

type UpsertProfileInput struct {
	Kind        models.ProfileKind `json:"kind"`
	DisplayName string             `json:"display_name"`
	Bio         *string            `json:"bio,omitempty"`
	Socials     *string            `json:"socials,omitempty"`
}

type ProfileService interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUserAndKind(ctx context.Context, userID string, kind models.ProfileKind) (*models.Profile, error)
	// Upsert создаёт или обновляет профиль пользователя userID.
	// Разрешён самому пользователю либо админу.
	Upsert(ctx context.Context, identity Identity, userID string, input UpsertProfileInput) (*models.Profile, error)
	UploadPhoto(ctx context.Context, identity Identity, profileID string, contentType string, data io.Reader) (*models.Profile, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
}

func NewProfileService(profileRepo repositories.ProfileRepository, uploader storage.FileUploader) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		uploader:    uploader,
	}
}

func (s *profileService) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	s.populatePhotoURL(profile)
	return profile, nil
}

func (s *profileService) GetByUserAndKind(ctx context.Context, userID string, kind models.ProfileKind) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserAndKind(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	s.populatePhotoURL(profile)
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, identity Identity, userID string, input UpsertProfileInput) (*models.Profile, error) {
	if identity.Role != models.RoleAdmin && identity.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	if input.Kind != models.ProfileKindTeamOwner && input.Kind != models.ProfileKindOrganizer {
		return nil, ErrValidationFailed
	}
	if input.DisplayName == "" {
		return nil, ErrValidationFailed
	}

	profile := &models.Profile{
		UserID:      userID,
		Kind:        input.Kind,
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
		Socials:     input.Socials,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	s.populatePhotoURL(profile)
	return profile, nil
}

func (s *profileService) UploadPhoto(ctx context.Context, identity Identity, profileID string, contentType string, data io.Reader) (*models.Profile, error) {
	profile, err := s.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if identity.Role != models.RoleAdmin && identity.UserID != profile.UserID {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	key := fmt.Sprintf("profiles/%s/photo", profile.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	if err = s.profileRepo.UpdatePhotoKey(ctx, profile.ID, &result.Key); err != nil {
		return nil, err
	}
	profile.PhotoKey = &result.Key
	s.populatePhotoURL(profile)
	return profile, nil
}

func (s *profileService) populatePhotoURL(profile *models.Profile) {
	if s.uploader == nil || profile.PhotoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*profile.PhotoKey); url != "" {
		profile.PhotoURL = &url
	}
}
