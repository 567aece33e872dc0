package models

import "time"

type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusStarted   SessionStatus = "started"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session is a private round-robin event: the organizer collects players via
// an invite code, then starts it, which generates the full all-pairs schedule.
// draft -> started is a one-way transition.
type Session struct {
	ID          int           `json:"id" db:"id"`
	OrganizerID int           `json:"organizer_id" db:"organizer_id"`
	InviteCode  string        `json:"invite_code" db:"invite_code"`
	TimeControl string        `json:"time_control" db:"time_control"`
	Status      SessionStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`

	Participants []SessionParticipant `json:"participants,omitempty" db:"-"`
}

type SessionParticipant struct {
	ID        int       `json:"id" db:"id"`
	SessionID int       `json:"session_id" db:"session_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
