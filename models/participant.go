package models

import "time"

// TournamentParticipant tracks a player's standing inside one tournament.
// LivesRemaining is non-nil only for survival tournaments. Once EliminatedAt
// is set the participant is terminal: no further life loss applies, though
// score keeps moving so the leaderboard stays complete.
type TournamentParticipant struct {
	ID              int        `json:"id" db:"id"`
	TournamentID    int        `json:"tournament_id" db:"tournament_id"`
	PlayerID        int        `json:"player_id" db:"player_id"`
	Score           int        `json:"score" db:"score"`
	LivesRemaining  *int       `json:"lives_remaining,omitempty" db:"lives_remaining"`
	EliminatedAt    *time.Time `json:"eliminated_at,omitempty" db:"eliminated_at"`
	ActiveGameCount int        `json:"active_game_count" db:"active_game_count"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
