package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Dosada05/sports-auction/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUploadPhoto_StorageNotConfigured(t *testing.T) {
	profiles := newFakeProfileRepo()
	profile := &models.Profile{
		UserID:      "u1",
		Kind:        models.ProfileKindTeamOwner,
		DisplayName: "Sam Lee",
	}
	require.NoError(t, profiles.Upsert(context.Background(), profile))

	service := NewProfileService(profiles, nil)
	owner := Identity{UserID: "u1", Role: models.RoleTeamOwner}

	_, err := service.UploadPhoto(context.Background(), owner, profile.ID, "image/png", strings.NewReader("photo"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
