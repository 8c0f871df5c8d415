package models

import "time"

// PlayerStatus представляет статусы игрока, соответствующие ENUM в БД.
type PlayerStatus string

const (
	PlayerStatusAvailable   PlayerStatus = "AVAILABLE"
	PlayerStatusInAuction   PlayerStatus = "IN_AUCTION"
	PlayerStatusAllocated   PlayerStatus = "ALLOCATED"
	PlayerStatusUnallocated PlayerStatus = "UNALLOCATED"
)

// playerStatusTransitions перечисляет допустимые переходы статусов.
// UNALLOCATED — только импортное/начальное состояние: попасть в него
// обратно можно лишь при отмене ставки, если игрок был в нём до продажи.
var playerStatusTransitions = map[PlayerStatus][]PlayerStatus{
	PlayerStatusAvailable:   {PlayerStatusInAuction, PlayerStatusAllocated},
	PlayerStatusUnallocated: {PlayerStatusInAuction, PlayerStatusAllocated},
	PlayerStatusInAuction:   {PlayerStatusAllocated, PlayerStatusAvailable, PlayerStatusUnallocated},
	PlayerStatusAllocated:   {PlayerStatusAvailable, PlayerStatusUnallocated, PlayerStatusInAuction},
}

func (s PlayerStatus) Valid() bool {
	switch s {
	case PlayerStatusAvailable, PlayerStatusInAuction, PlayerStatusAllocated, PlayerStatusUnallocated:
		return true
	}
	return false
}

// CanTransitionTo сообщает, разрешён ли переход в статус next.
func (s PlayerStatus) CanTransitionTo(next PlayerStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range playerStatusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Biddable сообщает, можно ли записать ставку на игрока в этом статусе.
func (s PlayerStatus) Biddable() bool {
	return s == PlayerStatusAvailable || s == PlayerStatusUnallocated || s == PlayerStatusInAuction
}

type Player struct {
	ID             string       `json:"id" db:"id"`
	TournamentID   string       `json:"tournament_id" db:"tournament_id"`
	SportCategory  string       `json:"sport_category" db:"sport_category"`
	Name           string       `json:"name" db:"name"`
	BasePrice      int64        `json:"base_price" db:"base_price"`
	Status         PlayerStatus `json:"status" db:"status"`
	CurrentTeamID  *string      `json:"current_team_id,omitempty" db:"current_team_id"`
	CategoryID     *string      `json:"category_id,omitempty" db:"category_id"`
	CategoryName   *string      `json:"category_name,omitempty" db:"-"`
	SkillLevel     *string      `json:"skill_level,omitempty" db:"skill_level"`
	PlayerPosition *string      `json:"player_position,omitempty" db:"player_position"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}
