package models

import "time"

type Team struct {
	ID              string    `json:"id" db:"id"`
	TournamentID    string    `json:"tournament_id" db:"tournament_id"`
	SportCategory   string    `json:"sport_category" db:"sport_category"`
	Name            string    `json:"name" db:"name"`
	OwnerName       string    `json:"owner_name" db:"owner_name"`
	OwnerID         *string   `json:"owner_id,omitempty" db:"owner_id"`
	InitialBudget   int64     `json:"initial_budget" db:"initial_budget"`
	RemainingBudget int64     `json:"remaining_budget" db:"remaining_budget"`
	MinPlayers      int       `json:"min_players" db:"min_players"`
	MaxPlayers      int       `json:"max_players" db:"max_players"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Players []Player `json:"players,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// PreferredPlayer — запись вишлиста команды. Только рекомендация,
// на ход аукциона не влияет.
type PreferredPlayer struct {
	ID        string    `json:"id" db:"id"`
	TeamID    string    `json:"team_id" db:"team_id"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	MaxBid    int64     `json:"max_bid" db:"max_bid"`
	Priority  int       `json:"priority" db:"priority"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
