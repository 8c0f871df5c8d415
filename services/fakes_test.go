package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/sports-auction/live"
	"github.com/Dosada05/sports-auction/models"
	"github.com/Dosada05/sports-auction/repositories"
	"github.com/google/uuid"
)

// fakeTxManager выполняет замыкание без настоящей транзакции.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeHub struct {
	mu       sync.Mutex
	messages []live.Message
}

func (h *fakeHub) BroadcastToRoom(roomID string, message live.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	message.RoomID = roomID
	h.messages = append(h.messages, message)
}

func (h *fakeHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

type fakeTournamentRepo struct {
	tournaments map[string]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.tournaments))
	for id := range r.tournaments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	return nil
}

type fakePlayerRepo struct {
	players map[string]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]*models.Player)}
}

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id string) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Player, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePlayerRepo) ListAvailable(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.TournamentID != tournamentID {
			continue
		}
		if p.Status != models.PlayerStatusAvailable && p.Status != models.PlayerStatusUnallocated {
			continue
		}
		if sportCategory != nil && p.SportCategory != *sportCategory {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.CurrentTeamID != nil && *p.CurrentTeamID == teamID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.PlayerStatus) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	return nil
}

func (r *fakePlayerRepo) UpdateAllocation(ctx context.Context, exec repositories.SQLExecutor, id string, status models.PlayerStatus, teamID *string) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Status = status
	p.CurrentTeamID = teamID
	return nil
}

func (r *fakePlayerRepo) UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.PhotoKey = photoKey
	return nil
}

type fakeTeamRepo struct {
	teams   map[string]*models.Team
	players *fakePlayerRepo
}

func newFakeTeamRepo(players *fakePlayerRepo) *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team), players: players}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID string, sportCategory *string) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for _, t := range r.teams {
		if t.TournamentID != tournamentID {
			continue
		}
		if sportCategory != nil && t.SportCategory != *sportCategory {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) CountAllocatedPlayers(ctx context.Context, exec repositories.SQLExecutor, teamID string) (int, error) {
	count := 0
	for _, p := range r.players.players {
		if p.CurrentTeamID != nil && *p.CurrentTeamID == teamID && p.Status == models.PlayerStatusAllocated {
			count++
		}
	}
	return count, nil
}

func (r *fakeTeamRepo) DebitBudget(ctx context.Context, exec repositories.SQLExecutor, teamID string, amount int64) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if t.RemainingBudget < amount {
		return repositories.ErrInsufficientTeamBudget
	}
	t.RemainingBudget -= amount
	return nil
}

func (r *fakeTeamRepo) CreditBudget(ctx context.Context, exec repositories.SQLExecutor, teamID string, amount int64) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.RemainingBudget += amount
	return nil
}

type fakeQueueRepo struct {
	items map[string]*models.AuctionQueueItem
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{items: make(map[string]*models.AuctionQueueItem)}
}

func (r *fakeQueueRepo) Insert(ctx context.Context, exec repositories.SQLExecutor, item *models.AuctionQueueItem) error {
	for _, existing := range r.items {
		if existing.TournamentID == item.TournamentID && existing.PlayerID == item.PlayerID && !existing.IsProcessed {
			return repositories.ErrQueuePlayerConflict
		}
		if existing.TournamentID == item.TournamentID && existing.SportCategory == item.SportCategory &&
			existing.QueuePosition == item.QueuePosition {
			return repositories.ErrQueuePositionConflict
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeQueueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.AuctionQueueItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrQueueItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeQueueRepo) NextPosition(ctx context.Context, exec repositories.SQLExecutor, tournamentID, sportCategory string) (int, error) {
	max := 0
	for _, item := range r.items {
		if item.TournamentID == tournamentID && item.SportCategory == sportCategory && item.QueuePosition > max {
			max = item.QueuePosition
		}
	}
	return max + 1, nil
}

func (r *fakeQueueRepo) FindUnprocessedByPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string) (*models.AuctionQueueItem, error) {
	for _, item := range r.items {
		if item.TournamentID == tournamentID && item.PlayerID == playerID && !item.IsProcessed {
			copied := *item
			return &copied, nil
		}
	}
	return nil, repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) FindByPosition(ctx context.Context, exec repositories.SQLExecutor, tournamentID, sportCategory string, position int) (*models.AuctionQueueItem, error) {
	for _, item := range r.items {
		if item.TournamentID == tournamentID && item.SportCategory == sportCategory && item.QueuePosition == position {
			copied := *item
			return &copied, nil
		}
	}
	return nil, repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) List(ctx context.Context, tournamentID string, includeProcessed bool) ([]*models.AuctionQueueItem, error) {
	out := make([]*models.AuctionQueueItem, 0)
	for _, item := range r.items {
		if item.TournamentID != tournamentID {
			continue
		}
		if !includeProcessed && item.IsProcessed {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuePosition < out[j].QueuePosition })
	return out, nil
}

func (r *fakeQueueRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrQueueItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeQueueRepo) UpdatePosition(ctx context.Context, exec repositories.SQLExecutor, id string, position int) error {
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrQueueItemNotFound
	}
	item.QueuePosition = position
	return nil
}

func (r *fakeQueueRepo) MarkProcessed(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string, processed bool) error {
	for _, item := range r.items {
		if item.TournamentID == tournamentID && item.PlayerID == playerID {
			item.IsProcessed = processed
		}
	}
	return nil
}

type fakeRoundRepo struct {
	rounds map[string]*models.AuctionRound
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[string]*models.AuctionRound)}
}

func (r *fakeRoundRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, round *models.AuctionRound) error {
	for _, existing := range r.rounds {
		if existing.TournamentID == round.TournamentID && existing.PlayerID == round.PlayerID {
			existing.FinalPoints = round.FinalPoints
			existing.WinningTeamID = round.WinningTeamID
			existing.Status = round.Status
			existing.PlayerPrevStatus = round.PlayerPrevStatus
			*round = *existing
			return nil
		}
	}
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	copied := *round
	r.rounds[round.ID] = &copied
	return nil
}

func (r *fakeRoundRepo) GetByID(ctx context.Context, id string) (*models.AuctionRound, error) {
	round, ok := r.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	copied := *round
	return &copied, nil
}

func (r *fakeRoundRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.AuctionRound, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRoundRepo) FindByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string) (*models.AuctionRound, error) {
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID && round.PlayerID == playerID {
			copied := *round
			return &copied, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *fakeRoundRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.RoundStatus) error {
	round, ok := r.rounds[id]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	round.Status = status
	return nil
}

func (r *fakeRoundRepo) ListRecent(ctx context.Context, tournamentID string, limit int) ([]*models.AuctionRound, error) {
	out := make([]*models.AuctionRound, 0)
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID {
			copied := *round
			out = append(out, &copied)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRoundRepo) SumCompletedByTeam(ctx context.Context, teamID string) (int64, error) {
	var sum int64
	for _, round := range r.rounds {
		if round.Status == models.RoundStatusCompleted && round.WinningTeamID != nil && *round.WinningTeamID == teamID {
			sum += round.FinalPoints
		}
	}
	return sum, nil
}

type fakeConsentRepo struct {
	consents map[string]*models.AuctionConsent
}

func (r *fakeConsentRepo) GetByTournamentAndEmail(ctx context.Context, tournamentID, email string) (*models.AuctionConsent, error) {
	consent, ok := r.consents[tournamentID+"/"+email]
	if !ok {
		return nil, repositories.ErrConsentNotFound
	}
	copied := *consent
	return &copied, nil
}

func (r *fakeConsentRepo) Upsert(ctx context.Context, consent *models.AuctionConsent) error {
	key := consent.TournamentID + "/" + consent.Email
	if existing, ok := r.consents[key]; ok {
		existing.Choice = consent.Choice
		*consent = *existing
		return nil
	}
	if consent.ID == "" {
		consent.ID = uuid.NewString()
	}
	copied := *consent
	r.consents[key] = &copied
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) GetByUserAndKind(ctx context.Context, userID string, kind models.ProfileKind) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID && p.Kind == kind {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	for _, existing := range r.profiles {
		if existing.UserID == profile.UserID && existing.Kind == profile.Kind {
			existing.DisplayName = profile.DisplayName
			existing.Bio = profile.Bio
			existing.Socials = profile.Socials
			*profile = *existing
			return nil
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	copied := *profile
	r.profiles[profile.ID] = &copied
	return nil
}

func (r *fakeProfileRepo) UpdatePhotoKey(ctx context.Context, id string, photoKey *string) error {
	p, ok := r.profiles[id]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.PhotoKey = photoKey
	return nil
}

type fakeRegistrationRepo struct {
	registrations map[string]*models.TournamentRegistration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[string]*models.TournamentRegistration)}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, reg *models.TournamentRegistration) error {
	for _, existing := range r.registrations {
		if existing.TournamentID == reg.TournamentID && existing.Email == reg.Email {
			return repositories.ErrRegistrationEmailConflict
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	copied := *reg
	r.registrations[reg.ID] = &copied
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*models.TournamentRegistration, error) {
	reg, ok := r.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, tournamentID string, verifiedOnly bool) ([]*models.TournamentRegistration, error) {
	out := make([]*models.TournamentRegistration, 0)
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if verifiedOnly && !reg.Verified {
			continue
		}
		copied := *reg
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRegistrationRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	reg, ok := r.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Verified = verified
	return nil
}

func (r *fakeRegistrationRepo) ListPromotable(ctx context.Context, tournamentID string) ([]*models.TournamentRegistration, error) {
	out := make([]*models.TournamentRegistration, 0)
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.Verified && reg.PromotedPlayerID == nil {
			copied := *reg
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeRegistrationRepo) SetPromoted(ctx context.Context, exec repositories.SQLExecutor, id string, playerID string) error {
	reg, ok := r.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	if reg.PromotedPlayerID != nil {
		return fmt.Errorf("registration %s already promoted", id)
	}
	reg.PromotedPlayerID = &playerID
	return nil
}
