package models

import "time"

// ProfileKind разделяет публичные профили владельцев команд и организаторов.
type ProfileKind string

const (
	ProfileKindTeamOwner ProfileKind = "team_owner"
	ProfileKindOrganizer ProfileKind = "organizer"
)

// Profile — публичная биографическая запись без жизненного цикла.
type Profile struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"user_id" db:"user_id"`
	Kind        ProfileKind `json:"kind" db:"kind"`
	DisplayName string      `json:"display_name" db:"display_name"`
	Bio         *string     `json:"bio,omitempty" db:"bio"`
	Socials     *string     `json:"socials,omitempty" db:"socials"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}
