package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magicolala/chess-arena/models"
)

type ScoreEventRepository interface {
	// Create appends one audit row; score events are never updated or
	// deleted.
	Create(ctx context.Context, exec SQLExecutor, event *models.ScoreEvent) error
	ListByParticipant(ctx context.Context, participantID int) ([]*models.ScoreEvent, error)
}

type postgresScoreEventRepository struct {
	db *sql.DB
}

func NewPostgresScoreEventRepository(db *sql.DB) ScoreEventRepository {
	return &postgresScoreEventRepository{db: db}
}

func (r *postgresScoreEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.ScoreEvent) error {
	query := `
		INSERT INTO score_events (participant_id, game_id, delta, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query, event.ParticipantID, event.GameID, event.Delta, event.Reason).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score event: %w", err)
	}
	return nil
}

func (r *postgresScoreEventRepository) ListByParticipant(ctx context.Context, participantID int) ([]*models.ScoreEvent, error) {
	query := `SELECT id, participant_id, game_id, delta, reason, created_at FROM score_events WHERE participant_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list score events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.ScoreEvent, 0)
	for rows.Next() {
		e := &models.ScoreEvent{}
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.GameID, &e.Delta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score events: %w", err)
	}
	return events, nil
}
