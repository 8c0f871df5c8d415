package services

import (
	"context"
	"testing"

	"github.com/Dosada05/sports-auction/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueFixture struct {
	service     QueueService
	tournaments *fakeTournamentRepo
	players     *fakePlayerRepo
	queue       *fakeQueueRepo
	hub         *fakeHub

	tournament *models.Tournament
}

func newQueueFixture(t *testing.T) *queueFixture {
	t.Helper()

	tournaments := newFakeTournamentRepo()
	players := newFakePlayerRepo()
	queue := newFakeQueueRepo()
	hub := &fakeHub{}

	tournament := &models.Tournament{Name: "Spring Cup", Status: models.TournamentStatusAuction}
	require.NoError(t, tournaments.Create(context.Background(), tournament))

	service := NewQueueService(fakeTxManager{}, tournaments, players, queue, hub)
	return &queueFixture{
		service:     service,
		tournaments: tournaments,
		players:     players,
		queue:       queue,
		hub:         hub,
		tournament:  tournament,
	}
}

func (f *queueFixture) addPlayer(t *testing.T, status models.PlayerStatus) *models.Player {
	t.Helper()
	player := &models.Player{
		TournamentID: f.tournament.ID,
		Name:         "player",
		Status:       status,
	}
	require.NoError(t, f.players.Create(context.Background(), nil, player))
	return player
}

func TestEnqueue_AssignsSequentialPositions(t *testing.T) {
	f := newQueueFixture(t)
	first := f.addPlayer(t, models.PlayerStatusAvailable)
	second := f.addPlayer(t, models.PlayerStatusUnallocated)

	itemOne, err := f.service.Enqueue(context.Background(), f.tournament.ID, first.ID)
	require.NoError(t, err)
	itemTwo, err := f.service.Enqueue(context.Background(), f.tournament.ID, second.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, itemOne.QueuePosition)
	assert.Equal(t, 2, itemTwo.QueuePosition)

	// Оба игрока переведены в IN_AUCTION.
	for _, id := range []string{first.ID, second.ID} {
		player, getErr := f.players.GetByID(context.Background(), id)
		require.NoError(t, getErr)
		assert.Equal(t, models.PlayerStatusInAuction, player.Status)
	}

	assert.Equal(t, 2, f.hub.count())
}

func TestEnqueue_DuplicateRejected(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAvailable)

	_, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	require.NoError(t, err)

	// Игрок уже IN_AUCTION, повторная постановка невозможна.
	_, err = f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	assert.ErrorIs(t, err, ErrPlayerNotQueueable)
}

func TestEnqueue_AllocatedPlayerRejected(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAllocated)

	_, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	assert.ErrorIs(t, err, ErrPlayerNotQueueable)
}

func TestEnqueue_UnknownTournamentRejected(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAvailable)

	_, err := f.service.Enqueue(context.Background(), "missing", player.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestBatchEnqueue_ReportsPerPlayerErrors(t *testing.T) {
	f := newQueueFixture(t)
	ok := f.addPlayer(t, models.PlayerStatusAvailable)
	allocated := f.addPlayer(t, models.PlayerStatusAllocated)

	results := f.service.BatchEnqueue(context.Background(), f.tournament.ID, []string{ok.ID, allocated.ID, "missing"})
	require.Len(t, results, 3)

	assert.Empty(t, results[0].Error)
	require.NotNil(t, results[0].Item)
	assert.Equal(t, 1, results[0].Item.QueuePosition)

	assert.Equal(t, ErrPlayerNotQueueable.Error(), results[1].Error)
	assert.Equal(t, ErrPlayerNotFound.Error(), results[2].Error)
}

func TestRemove_RestoresPlayerToAvailable(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAvailable)

	item, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Remove(context.Background(), item.ID))

	got, getErr := f.players.GetByID(context.Background(), player.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PlayerStatusAvailable, got.Status)

	_, err = f.queue.GetByID(context.Background(), nil, item.ID)
	assert.Error(t, err)
}

func TestRemove_ProcessedItemRejected(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAvailable)

	item, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	require.NoError(t, err)
	require.NoError(t, f.queue.MarkProcessed(context.Background(), nil, f.tournament.ID, player.ID, true))

	err = f.service.Remove(context.Background(), item.ID)
	assert.ErrorIs(t, err, ErrQueueItemProcessed)
}

func TestReorder_SwapsPositionsWithOccupant(t *testing.T) {
	f := newQueueFixture(t)
	first := f.addPlayer(t, models.PlayerStatusAvailable)
	second := f.addPlayer(t, models.PlayerStatusAvailable)

	itemOne, err := f.service.Enqueue(context.Background(), f.tournament.ID, first.ID)
	require.NoError(t, err)
	itemTwo, err := f.service.Enqueue(context.Background(), f.tournament.ID, second.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Reorder(context.Background(), itemTwo.ID, 1))

	gotOne, err := f.queue.GetByID(context.Background(), nil, itemOne.ID)
	require.NoError(t, err)
	gotTwo, err := f.queue.GetByID(context.Background(), nil, itemTwo.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, gotOne.QueuePosition)
	assert.Equal(t, 1, gotTwo.QueuePosition)
}

func TestReorder_InvalidPositionRejected(t *testing.T) {
	f := newQueueFixture(t)

	err := f.service.Reorder(context.Background(), "any", 0)
	assert.ErrorIs(t, err, ErrQueuePositionInvalid)
}

func TestReorder_ProcessedItemRejected(t *testing.T) {
	f := newQueueFixture(t)
	player := f.addPlayer(t, models.PlayerStatusAvailable)

	item, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
	require.NoError(t, err)
	require.NoError(t, f.queue.MarkProcessed(context.Background(), nil, f.tournament.ID, player.ID, true))

	err = f.service.Reorder(context.Background(), item.ID, 5)
	assert.ErrorIs(t, err, ErrQueueItemProcessed)
}

func TestList_ReturnsItemsInQueueOrder(t *testing.T) {
	f := newQueueFixture(t)
	for i := 0; i < 3; i++ {
		player := f.addPlayer(t, models.PlayerStatusAvailable)
		_, err := f.service.Enqueue(context.Background(), f.tournament.ID, player.ID)
		require.NoError(t, err)
	}

	items, err := f.service.List(context.Background(), f.tournament.ID, false)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i+1, item.QueuePosition)
	}
}
