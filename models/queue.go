package models

import "time"

// AuctionQueueItem — позиция игрока в очереди аукциона турнира.
type AuctionQueueItem struct {
	ID            string    `json:"id" db:"id"`
	TournamentID  string    `json:"tournament_id" db:"tournament_id"`
	SportCategory string    `json:"sport_category" db:"sport_category"`
	PlayerID      string    `json:"player_id" db:"player_id"`
	QueuePosition int       `json:"queue_position" db:"queue_position"`
	IsProcessed   bool      `json:"is_processed" db:"is_processed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
