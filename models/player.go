package models

import "time"

type Player struct {
	ID           int       `json:"id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Elo          int       `json:"elo" db:"elo"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	Age          *int      `json:"age,omitempty" db:"age"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	AvatarKey    *string   `json:"-" db:"avatar_key"`
	AvatarURL    *string   `json:"avatar_url,omitempty" db:"-"`
}

// RatingProfile is the slice of a player record the rating math needs.
type RatingProfile struct {
	PlayerID    int  `json:"player_id"`
	Elo         int  `json:"elo"`
	GamesPlayed int  `json:"games_played"`
	Age         *int `json:"age,omitempty"`
}
