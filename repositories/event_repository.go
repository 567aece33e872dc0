package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magicolala/chess-arena/models"
)

type MatchmakingEventRepository interface {
	Create(ctx context.Context, event *models.MatchmakingEvent) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchmakingEvent, error)
}

type postgresMatchmakingEventRepository struct {
	db *sql.DB
}

func NewPostgresMatchmakingEventRepository(db *sql.DB) MatchmakingEventRepository {
	return &postgresMatchmakingEventRepository{db: db}
}

func (r *postgresMatchmakingEventRepository) Create(ctx context.Context, event *models.MatchmakingEvent) error {
	query := `
		INSERT INTO matchmaking_events (tournament_id, player_id, type, game_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, event.TournamentID, event.PlayerID, event.Type, event.GameID).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create matchmaking event: %w", err)
	}
	return nil
}

func (r *postgresMatchmakingEventRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchmakingEvent, error) {
	query := `SELECT id, tournament_id, player_id, type, game_id, created_at FROM matchmaking_events WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchmaking events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.MatchmakingEvent, 0)
	for rows.Next() {
		e := &models.MatchmakingEvent{}
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.PlayerID, &e.Type, &e.GameID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan matchmaking event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchmaking events: %w", err)
	}
	return events, nil
}
