package models

import "time"

// RoundStatus представляет статусы раунда аукциона, соответствующие ENUM в БД.
type RoundStatus string

const (
	RoundStatusInProgress RoundStatus = "IN_PROGRESS"
	RoundStatusCompleted  RoundStatus = "COMPLETED"
	RoundStatusUndone     RoundStatus = "UNDONE"
)

// AuctionRound — результат аукциона по одному игроку. Для пары
// (tournament_id, player_id) существует не более одного раунда.
type AuctionRound struct {
	ID            string      `json:"id" db:"id"`
	TournamentID  string      `json:"tournament_id" db:"tournament_id"`
	PlayerID      string      `json:"player_id" db:"player_id"`
	StartingPrice int64       `json:"starting_price" db:"starting_price"`
	FinalPoints   int64       `json:"final_points" db:"final_points"`
	WinningTeamID *string     `json:"winning_team_id,omitempty" db:"winning_team_id"`
	Status        RoundStatus `json:"status" db:"status"`

	// Статус игрока до продажи; используется при отмене раунда,
	// чтобы вернуть игрока ровно туда, откуда он пришёл.
	PlayerPrevStatus PlayerStatus `json:"-" db:"player_prev_status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	PlayerName      *string `json:"player_name,omitempty" db:"-"`
	WinningTeamName *string `json:"winning_team_name,omitempty" db:"-"`
}
