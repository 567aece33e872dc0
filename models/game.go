package models

import "time"

type GameStatus string

const (
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusWhiteWon   GameStatus = "white_won"
	GameStatusBlackWon   GameStatus = "black_won"
	GameStatusDraw       GameStatus = "draw"
)

// Outcome is the result of a finished game as reported by the clients.
type Outcome string

const (
	OutcomeWhiteWon Outcome = "white_won"
	OutcomeBlackWon Outcome = "black_won"
	OutcomeDraw     Outcome = "draw"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWhiteWon, OutcomeBlackWon, OutcomeDraw:
		return true
	}
	return false
}

// TerminalStatus maps an outcome to the game status it settles into.
func (o Outcome) TerminalStatus() GameStatus {
	switch o {
	case OutcomeWhiteWon:
		return GameStatusWhiteWon
	case OutcomeBlackWon:
		return GameStatusBlackWon
	default:
		return GameStatusDraw
	}
}

func (s GameStatus) Terminal() bool {
	return s == GameStatusWhiteWon || s == GameStatusBlackWon || s == GameStatusDraw
}

type Game struct {
	ID           int        `json:"id" db:"id"`
	WhiteID      int        `json:"white_id" db:"white_id"`
	BlackID      int        `json:"black_id" db:"black_id"`
	TimeControl  string     `json:"time_control" db:"time_control"`
	TournamentID *int       `json:"tournament_id,omitempty" db:"tournament_id"`
	SessionID    *int       `json:"session_id,omitempty" db:"session_id"`
	Status       GameStatus `json:"status" db:"status"`
	MoveCount    int        `json:"move_count" db:"move_count"`
	LastMoveAt   *time.Time `json:"last_move_at,omitempty" db:"last_move_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}
