package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/sports-auction/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	service       RegistrationService
	tournaments   *fakeTournamentRepo
	registrations *fakeRegistrationRepo
	players       *fakePlayerRepo

	tournament *models.Tournament
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()

	tournaments := newFakeTournamentRepo()
	registrations := newFakeRegistrationRepo()
	players := newFakePlayerRepo()

	tournament := &models.Tournament{
		Name:             "City Open",
		Status:           models.TournamentStatusRegistration,
		DefaultBasePrice: 200,
	}
	require.NoError(t, tournaments.Create(context.Background(), tournament))

	service := NewRegistrationService(fakeTxManager{}, registrations, players, tournaments)
	return &registrationFixture{
		service:       service,
		tournaments:   tournaments,
		registrations: registrations,
		players:       players,
		tournament:    tournament,
	}
}

func validRegistrationInput() RegisterPlayerInput {
	height := 1.85
	return RegisterPlayerInput{
		SportCategory: "basketball",
		FullName:      "Jordan Lee",
		Email:         "jordan@example.com",
		HeightM:       &height,
		LastPlayed:    models.LastPlayedThisSeason,
	}
}

func TestRegister_CreatesRegistration(t *testing.T) {
	f := newRegistrationFixture(t)

	reg, err := f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, f.tournament.ID, reg.TournamentID)
	assert.False(t, reg.Verified)
}

func TestRegister_UnknownTournamentRejected(t *testing.T) {
	f := newRegistrationFixture(t)

	_, err := f.service.Register(context.Background(), "missing", validRegistrationInput())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegister_InvalidEmailRejected(t *testing.T) {
	f := newRegistrationFixture(t)

	input := validRegistrationInput()
	input.Email = "not-an-email"

	_, err := f.service.Register(context.Background(), f.tournament.ID, input)
	require.ErrorIs(t, err, ErrValidationFailed)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "Email")
}

func TestRegister_HeightOutOfRangeRejected(t *testing.T) {
	f := newRegistrationFixture(t)

	input := validRegistrationInput()
	height := 3.1
	input.HeightM = &height

	_, err := f.service.Register(context.Background(), f.tournament.ID, input)
	require.ErrorIs(t, err, ErrValidationFailed)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "HeightM")
}

func TestRegister_YouthRequiresGuardian(t *testing.T) {
	f := newRegistrationFixture(t)

	input := validRegistrationInput()
	dob := time.Now().AddDate(-15, 0, 0)
	input.DateOfBirth = &dob

	_, err := f.service.Register(context.Background(), f.tournament.ID, input)
	require.ErrorIs(t, err, ErrValidationFailed)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "GuardianName")
	assert.Contains(t, validationErr.Fields, "GuardianPhone")

	// С данными опекуна заявка проходит.
	guardianName := "Sam Lee"
	guardianPhone := "+1-555-0100"
	input.GuardianName = &guardianName
	input.GuardianPhone = &guardianPhone

	_, err = f.service.Register(context.Background(), f.tournament.ID, input)
	assert.NoError(t, err)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	f := newRegistrationFixture(t)

	_, err := f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	assert.ErrorIs(t, err, ErrRegistrationEmailConflict)
}

func TestPromoteRoster_CreatesPlayersForVerifiedOnly(t *testing.T) {
	f := newRegistrationFixture(t)

	verified, err := f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	require.NoError(t, err)
	require.NoError(t, f.service.Verify(context.Background(), verified.ID))

	unverifiedInput := validRegistrationInput()
	unverifiedInput.Email = "other@example.com"
	_, err = f.service.Register(context.Background(), f.tournament.ID, unverifiedInput)
	require.NoError(t, err)

	results, err := f.service.PromoteRoster(context.Background(), f.tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, verified.ID, results[0].RegistrationID)
	require.NotNil(t, results[0].PlayerID)

	player, getErr := f.players.GetByID(context.Background(), *results[0].PlayerID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PlayerStatusAvailable, player.Status)
	assert.Equal(t, int64(200), player.BasePrice)
	assert.Equal(t, "Jordan Lee", player.Name)
}

func TestPromoteRoster_IsIdempotent(t *testing.T) {
	f := newRegistrationFixture(t)

	reg, err := f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	require.NoError(t, err)
	require.NoError(t, f.service.Verify(context.Background(), reg.ID))

	first, err := f.service.PromoteRoster(context.Background(), f.tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Повторный вызов не создаёт дублей.
	second, err := f.service.PromoteRoster(context.Background(), f.tournament.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, f.players.players, 1)
}

func TestPromoteRoster_BasePriceOverride(t *testing.T) {
	f := newRegistrationFixture(t)

	reg, err := f.service.Register(context.Background(), f.tournament.ID, validRegistrationInput())
	require.NoError(t, err)
	require.NoError(t, f.service.Verify(context.Background(), reg.ID))

	override := int64(500)
	results, err := f.service.PromoteRoster(context.Background(), f.tournament.ID, &override)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].PlayerID)

	player, getErr := f.players.GetByID(context.Background(), *results[0].PlayerID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(500), player.BasePrice)
}
