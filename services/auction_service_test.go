package services

import (
	"context"
	"testing"

	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auctionFixture struct {
	service     AuctionService
	tournaments *fakeTournamentRepo
	teams       *fakeTeamRepo
	players     *fakePlayerRepo
	queue       *fakeQueueRepo
	rounds      *fakeRoundRepo
	hub         *fakeHub

	tournament *models.Tournament
	team       *models.Team
	player     *models.Player
}

func newAuctionFixture(t *testing.T, budget int64, basePrice int64, increment int64) *auctionFixture {
	t.Helper()

	tournaments := newFakeTournamentRepo()
	players := newFakePlayerRepo()
	teams := newFakeTeamRepo(players)
	queue := newFakeQueueRepo()
	rounds := newFakeRoundRepo()
	hub := &fakeHub{}

	tournament := &models.Tournament{
		Name:            "Summer League",
		Status:          models.TournamentStatusAuction,
		MinBidIncrement: increment,
	}
	require.NoError(t, tournaments.Create(context.Background(), tournament))

	team := &models.Team{
		TournamentID:    tournament.ID,
		Name:            "Falcons",
		InitialBudget:   budget,
		RemainingBudget: budget,
		MaxPlayers:      3,
	}
	require.NoError(t, teams.Create(context.Background(), team))

	player := &models.Player{
		TournamentID: tournament.ID,
		Name:         "Alex Morgan",
		BasePrice:    basePrice,
		Status:       models.PlayerStatusInAuction,
	}
	require.NoError(t, players.Create(context.Background(), nil, player))

	require.NoError(t, queue.Insert(context.Background(), nil, &models.AuctionQueueItem{
		TournamentID:  tournament.ID,
		PlayerID:      player.ID,
		QueuePosition: 1,
	}))

	service := NewAuctionService(fakeTxManager{}, tournaments, teams, players, queue, rounds, hub)
	return &auctionFixture{
		service:     service,
		tournaments: tournaments,
		teams:       teams,
		players:     players,
		queue:       queue,
		rounds:      rounds,
		hub:         hub,
		tournament:  tournament,
		team:        team,
		player:      player,
	}
}

func (f *auctionFixture) recordBid(amount int64) (*models.AuctionRound, error) {
	return f.service.RecordBid(context.Background(), RecordBidInput{
		TournamentID: f.tournament.ID,
		PlayerID:     f.player.ID,
		TeamID:       f.team.ID,
		Amount:       amount,
	})
}

func TestRecordBid_AllocatesPlayerAndDebitsBudget(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	round, err := f.recordBid(150)
	require.NoError(t, err)

	assert.Equal(t, models.RoundStatusCompleted, round.Status)
	assert.Equal(t, int64(150), round.FinalPoints)
	require.NotNil(t, round.WinningTeamID)
	assert.Equal(t, f.team.ID, *round.WinningTeamID)
	assert.Equal(t, models.PlayerStatusInAuction, round.PlayerPrevStatus)

	team, err := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(850), team.RemainingBudget)

	player, err := f.players.GetByID(context.Background(), f.player.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusAllocated, player.Status)
	require.NotNil(t, player.CurrentTeamID)
	assert.Equal(t, f.team.ID, *player.CurrentTeamID)

	item, err := f.queue.FindUnprocessedByPlayer(context.Background(), nil, f.tournament.ID, f.player.ID)
	assert.Error(t, err)
	assert.Nil(t, item)

	assert.Equal(t, 1, f.hub.count())
}

func TestRecordBid_NegativeAmountRejected(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	_, err := f.recordBid(-1)
	assert.ErrorIs(t, err, ErrBidAmountInvalid)
}

func TestRecordBid_BelowBasePriceRejected(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	_, err := f.recordBid(90)
	assert.ErrorIs(t, err, ErrBidBelowBasePrice)

	team, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1000), team.RemainingBudget)
}

func TestRecordBid_IncrementViolationRejected(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	_, err := f.recordBid(105)
	assert.ErrorIs(t, err, ErrBidIncrementViolation)
}

func TestRecordBid_InsufficientBudgetRejected(t *testing.T) {
	f := newAuctionFixture(t, 120, 100, 10)

	_, err := f.recordBid(130)
	assert.ErrorIs(t, err, ErrInsufficientBudget)

	// Игрок не должен поменять статус после неудачной ставки.
	player, getErr := f.players.GetByID(context.Background(), f.player.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PlayerStatusInAuction, player.Status)
}

func TestRecordBid_RosterFullRejected(t *testing.T) {
	f := newAuctionFixture(t, 10000, 100, 10)

	// Заполняем состав до лимита.
	for i := 0; i < f.team.MaxPlayers; i++ {
		teamID := f.team.ID
		p := &models.Player{
			TournamentID:  f.tournament.ID,
			Name:          "roster filler",
			Status:        models.PlayerStatusAllocated,
			CurrentTeamID: &teamID,
		}
		require.NoError(t, f.players.Create(context.Background(), nil, p))
	}

	_, err := f.recordBid(100)
	assert.ErrorIs(t, err, ErrTeamRosterFull)
}

func TestRecordBid_IdempotentRetryReturnsExistingRound(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	first, err := f.recordBid(150)
	require.NoError(t, err)

	second, err := f.recordBid(150)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.FinalPoints, second.FinalPoints)

	// Бюджет списан ровно один раз.
	team, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(850), team.RemainingBudget)
}

func TestRecordBid_RebidRefundsPreviousWinner(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	_, err := f.recordBid(150)
	require.NoError(t, err)

	rival := &models.Team{
		TournamentID:    f.tournament.ID,
		Name:            "Hawks",
		InitialBudget:   500,
		RemainingBudget: 500,
		MaxPlayers:      3,
	}
	require.NoError(t, f.teams.Create(context.Background(), rival))

	round, err := f.service.RecordBid(context.Background(), RecordBidInput{
		TournamentID: f.tournament.ID,
		PlayerID:     f.player.ID,
		TeamID:       rival.ID,
		Amount:       200,
	})
	require.NoError(t, err)
	require.NotNil(t, round.WinningTeamID)
	assert.Equal(t, rival.ID, *round.WinningTeamID)

	// Прежнему победителю вернулись его 150.
	original, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1000), original.RemainingBudget)

	winner, getErr := f.teams.GetByID(context.Background(), nil, rival.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(300), winner.RemainingBudget)
}

func TestRecordBid_LargeBudgetValues(t *testing.T) {
	f := newAuctionFixture(t, 1_000_000_000, 0, 0)

	round, err := f.recordBid(999_999_999)
	require.NoError(t, err)
	assert.Equal(t, int64(999_999_999), round.FinalPoints)

	team, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1), team.RemainingBudget)
}

func TestUndoRound_RestoresBudgetAndPlayerStatus(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	round, err := f.recordBid(150)
	require.NoError(t, err)

	undone, err := f.service.UndoRound(context.Background(), round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusUndone, undone.Status)

	team, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1000), team.RemainingBudget)

	// Игрок возвращается ровно в статус до продажи.
	player, getErr := f.players.GetByID(context.Background(), f.player.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PlayerStatusInAuction, player.Status)
	assert.Nil(t, player.CurrentTeamID)

	// Запись очереди снова необработана.
	item, findErr := f.queue.FindUnprocessedByPlayer(context.Background(), nil, f.tournament.ID, f.player.ID)
	require.NoError(t, findErr)
	assert.False(t, item.IsProcessed)
}

func TestUndoRound_SecondUndoIsNoOp(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	round, err := f.recordBid(150)
	require.NoError(t, err)

	_, err = f.service.UndoRound(context.Background(), round.ID)
	require.NoError(t, err)

	broadcastsAfterFirstUndo := f.hub.count()

	again, err := f.service.UndoRound(context.Background(), round.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusUndone, again.Status)

	// Бюджет не кредитуется второй раз, событие не рассылается.
	team, getErr := f.teams.GetByID(context.Background(), nil, f.team.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(1000), team.RemainingBudget)
	assert.Equal(t, broadcastsAfterFirstUndo, f.hub.count())
}

func TestUndoRound_UnallocatedPlayerRevertsToUnallocated(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)
	f.players.players[f.player.ID].Status = models.PlayerStatusUnallocated

	round, err := f.recordBid(150)
	require.NoError(t, err)
	assert.Equal(t, models.PlayerStatusUnallocated, round.PlayerPrevStatus)

	_, err = f.service.UndoRound(context.Background(), round.ID)
	require.NoError(t, err)

	player, getErr := f.players.GetByID(context.Background(), f.player.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.PlayerStatusUnallocated, player.Status)
}

func TestRecordBid_UnknownTournamentRejected(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	_, err := f.service.RecordBid(context.Background(), RecordBidInput{
		TournamentID: "missing",
		PlayerID:     f.player.ID,
		TeamID:       f.team.ID,
		Amount:       150,
	})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRecordBid_PlayerFromAnotherTournamentRejected(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	other := &models.Tournament{Name: "Winter League"}
	require.NoError(t, f.tournaments.Create(context.Background(), other))

	_, err := f.service.RecordBid(context.Background(), RecordBidInput{
		TournamentID: other.ID,
		PlayerID:     f.player.ID,
		TeamID:       f.team.ID,
		Amount:       150,
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

// opLog фиксирует порядок обращений к репозиториям.
type opLog struct{ ops []string }

func (l *opLog) indexOf(op string) int {
	for i, o := range l.ops {
		if o == op {
			return i
		}
	}
	return -1
}

type playerRepoWithLog struct {
	*fakePlayerRepo
	log *opLog
}

func (r *playerRepoWithLog) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Player, error) {
	r.log.ops = append(r.log.ops, "player.GetForUpdate")
	return r.fakePlayerRepo.GetForUpdate(ctx, exec, id)
}

type teamRepoWithLog struct {
	*fakeTeamRepo
	log *opLog
}

func (r *teamRepoWithLog) CreditBudget(ctx context.Context, exec repositories.SQLExecutor, teamID string, amount int64) error {
	r.log.ops = append(r.log.ops, "team.CreditBudget")
	return r.fakeTeamRepo.CreditBudget(ctx, exec, teamID, amount)
}

// Undo берёт блокировку игрока до списаний и возвратов по команде — в том
// же порядке, что и RecordBid. Обратный порядок даёт взаимную блокировку
// при встречных bid и undo по одному лоту.
func TestUndoRound_LocksPlayerBeforeCreditingTeam(t *testing.T) {
	f := newAuctionFixture(t, 1000, 100, 10)

	round, err := f.recordBid(150)
	require.NoError(t, err)

	log := &opLog{}
	service := NewAuctionService(
		fakeTxManager{},
		f.tournaments,
		&teamRepoWithLog{fakeTeamRepo: f.teams, log: log},
		&playerRepoWithLog{fakePlayerRepo: f.players, log: log},
		f.queue,
		f.rounds,
		f.hub,
	)

	_, err = service.UndoRound(context.Background(), round.ID)
	require.NoError(t, err)

	playerIdx := log.indexOf("player.GetForUpdate")
	creditIdx := log.indexOf("team.CreditBudget")
	require.NotEqual(t, -1, playerIdx)
	require.NotEqual(t, -1, creditIdx)
	assert.Less(t, playerIdx, creditIdx)
}
