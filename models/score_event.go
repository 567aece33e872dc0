package models

import "time"

type ScoreReason string

const (
	ScoreReasonWin     ScoreReason = "win"
	ScoreReasonDraw    ScoreReason = "draw"
	ScoreReasonLoss    ScoreReason = "loss"
	ScoreReasonForfeit ScoreReason = "forfeit"
)

// ScoreEvent is an immutable audit row; a participant's score only ever
// changes through one of these.
type ScoreEvent struct {
	ID            int         `json:"id" db:"id"`
	ParticipantID int         `json:"participant_id" db:"participant_id"`
	GameID        int         `json:"game_id" db:"game_id"`
	Delta         int         `json:"delta" db:"delta"`
	Reason        ScoreReason `json:"reason" db:"reason"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}
