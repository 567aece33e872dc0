package models

import "time"

// TournamentMode distinguishes scoring semantics.
// Arena scores games independently; survival adds life loss and elimination.
type TournamentMode string

const (
	ModeArena    TournamentMode = "arena"
	ModeSurvival TournamentMode = "survival"
)

func (m TournamentMode) Valid() bool {
	return m == ModeArena || m == ModeSurvival
}

type TournamentStatus string

const (
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Mode         TournamentMode   `json:"mode" db:"mode"`
	TimeControl  string           `json:"time_control" db:"time_control"`
	InitialLives *int             `json:"initial_lives,omitempty" db:"initial_lives"`
	Status       TournamentStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

type LeaderboardEntry struct {
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}
