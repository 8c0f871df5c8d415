package models

import "time"

// LastPlayedStatus — когда регистрирующийся в последний раз играл.
type LastPlayedStatus string

const (
	LastPlayedThisSeason LastPlayedStatus = "this_season"
	LastPlayedLastSeason LastPlayedStatus = "last_season"
	LastPlayedOverAYear  LastPlayedStatus = "over_a_year"
	LastPlayedNever      LastPlayedStatus = "never"
)

// TournamentRegistration — заявка игрока до зачисления в ростер.
type TournamentRegistration struct {
	ID            string           `json:"id" db:"id"`
	TournamentID  string           `json:"tournament_id" db:"tournament_id"`
	SportCategory string           `json:"sport_category" db:"sport_category"`
	FullName      string           `json:"full_name" db:"full_name"`
	Email         string           `json:"email" db:"email"`
	Phone         *string          `json:"phone,omitempty" db:"phone"`
	HeightM       *float64         `json:"height_m,omitempty" db:"height_m"`
	DateOfBirth   *time.Time       `json:"date_of_birth,omitempty" db:"date_of_birth"`
	LastPlayed    LastPlayedStatus `json:"last_played" db:"last_played"`
	GuardianName  *string          `json:"guardian_name,omitempty" db:"guardian_name"`
	GuardianPhone *string          `json:"guardian_phone,omitempty" db:"guardian_phone"`
	Verified      bool             `json:"verified" db:"verified"`

	// Ссылка на игрока, созданного из этой заявки. Делает повторное
	// зачисление идемпотентным.
	PromotedPlayerID *string `json:"promoted_player_id,omitempty" db:"promoted_player_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConsentChoice — выбор режима аукциона, сделанный игроком.
type ConsentChoice string

const (
	ConsentOpenAuction  ConsentChoice = "OPEN_AUCTION"
	ConsentCategoryPool ConsentChoice = "CATEGORY_POOL"
)

func (c ConsentChoice) Valid() bool {
	return c == ConsentOpenAuction || c == ConsentCategoryPool
}

type AuctionConsent struct {
	ID           string        `json:"id" db:"id"`
	TournamentID string        `json:"tournament_id" db:"tournament_id"`
	Email        string        `json:"email" db:"email"`
	Choice       ConsentChoice `json:"choice" db:"choice"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
