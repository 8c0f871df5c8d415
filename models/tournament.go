package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentStatusDraft        TournamentStatus = "draft"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusAuction      TournamentStatus = "auction"
	TournamentStatusCompleted    TournamentStatus = "completed"
)

// Tournament представляет турнир вместе с настройками аукциона.
type Tournament struct {
	ID              string           `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	SportCategories []string         `json:"sport_categories,omitempty" db:"-"`
	Status          TournamentStatus `json:"status" db:"status"`
	OrganizerID     *string          `json:"organizer_id,omitempty" db:"organizer_id"`

	// Настройки аукциона.
	MinBidIncrement  int64 `json:"min_bid_increment" db:"min_bid_increment"`
	DefaultBasePrice int64 `json:"default_base_price" db:"default_base_price"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
