package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/magicolala/chess-arena/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionNotDraft: the draft->started transition found the session in
	// some other status; starting is a one-shot operation.
	ErrSessionNotDraft            = errors.New("session is not in draft status")
	ErrSessionParticipantConflict = errors.New("player already joined this session")
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id int) (*models.Session, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Session, error)
	AddParticipant(ctx context.Context, p *models.SessionParticipant) error
	// ListParticipants returns the roster in join order, which fixes the
	// pairing generation order.
	ListParticipants(ctx context.Context, sessionID int) ([]*models.SessionParticipant, error)
	// MarkStarted performs the guarded draft->started transition.
	MarkStarted(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (organizer_id, invite_code, time_control, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, s.OrganizerID, s.InviteCode, s.TimeControl, s.Status).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) scanSession(row *sql.Row, s *models.Session) error {
	return row.Scan(&s.ID, &s.OrganizerID, &s.InviteCode, &s.TimeControl, &s.Status, &s.CreatedAt)
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.Session, error) {
	query := `SELECT id, organizer_id, invite_code, time_control, status, created_at FROM sessions WHERE id = $1`
	s := &models.Session{}
	if err := r.scanSession(r.db.QueryRowContext(ctx, query, id), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) GetByInviteCode(ctx context.Context, code string) (*models.Session, error) {
	query := `SELECT id, organizer_id, invite_code, time_control, status, created_at FROM sessions WHERE invite_code = $1`
	s := &models.Session{}
	if err := r.scanSession(r.db.QueryRowContext(ctx, query, code), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session by invite code: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) AddParticipant(ctx context.Context, p *models.SessionParticipant) error {
	query := `
		INSERT INTO session_participants (session_id, player_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.SessionID, p.PlayerID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSessionParticipantConflict
		}
		return fmt.Errorf("failed to add session participant: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) ListParticipants(ctx context.Context, sessionID int) ([]*models.SessionParticipant, error) {
	query := `SELECT id, session_id, player_id, created_at FROM session_participants WHERE session_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.SessionParticipant, 0)
	for rows.Next() {
		p := &models.SessionParticipant{}
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PlayerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session participants: %w", err)
	}
	return participants, nil
}

func (r *postgresSessionRepository) MarkStarted(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE sessions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := exec.ExecContext(ctx, query, models.SessionStatusStarted, id, models.SessionStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to mark session started: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotDraft)
}
