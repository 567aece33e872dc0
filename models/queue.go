package models

import (
	"fmt"
	"time"
)

// QueueEntry is a waiting player in one of the matchmaking queues.
// A player has at most one live entry per queue (unique on queue_id+player_id).
type QueueEntry struct {
	ID                int       `json:"id" db:"id"`
	QueueID           string    `json:"queue_id" db:"queue_id"`
	PlayerID          int       `json:"player_id" db:"player_id"`
	Elo               int       `json:"elo" db:"elo"`
	EloMin            int       `json:"elo_min" db:"elo_min"`
	EloMax            int       `json:"elo_max" db:"elo_max"`
	LastRangeUpdateAt time.Time `json:"last_range_update_at" db:"last_range_update_at"`
	EnqueuedAt        time.Time `json:"enqueued_at" db:"enqueued_at"`
}

// TimeControlQueueID keys the simple FIFO queues, one per time control.
func TimeControlQueueID(timeControl string) string {
	return "tc:" + timeControl
}

// TournamentQueueID keys the Elo-windowed hydra queues, one per tournament.
func TournamentQueueID(tournamentID int) string {
	return fmt.Sprintf("hydra:%d", tournamentID)
}

type MatchmakingEventType string

const (
	MatchmakingEventJoin  MatchmakingEventType = "join"
	MatchmakingEventLeave MatchmakingEventType = "leave"
	MatchmakingEventMatch MatchmakingEventType = "match"
)

// MatchmakingEvent is an append-only audit row for queue activity.
type MatchmakingEvent struct {
	ID           int                  `json:"id" db:"id"`
	TournamentID int                  `json:"tournament_id" db:"tournament_id"`
	PlayerID     int                  `json:"player_id" db:"player_id"`
	Type         MatchmakingEventType `json:"type" db:"type"`
	GameID       *int                 `json:"game_id,omitempty" db:"game_id"`
	CreatedAt    time.Time            `json:"created_at" db:"created_at"`
}
