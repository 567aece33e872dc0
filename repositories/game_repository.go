package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magicolala/chess-arena/models"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrGameAlreadyFinished = errors.New("game already finished")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	// Finish moves a game to a terminal status only if it is still in the
	// expected prior status. Zero rows affected means another caller got
	// there first (ErrGameAlreadyFinished).
	Finish(ctx context.Context, exec SQLExecutor, id int, from, to models.GameStatus) error
	ListBySession(ctx context.Context, sessionID int) ([]*models.Game, error)
	// ListStarvedByTournament returns in-progress tournament games with no
	// moves played that were created before the cutoff.
	ListStarvedByTournament(ctx context.Context, tournamentID int, cutoff time.Time) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, white_id, black_id, time_control, tournament_id, session_id, status, move_count, last_move_at, created_at, finished_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	query := `
		INSERT INTO games (white_id, black_id, time_control, tournament_id, session_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	if game.Status == "" {
		game.Status = models.GameStatusInProgress
	}
	err := exec.QueryRowContext(ctx, query,
		game.WhiteID, game.BlackID, game.TimeControl, game.TournamentID, game.SessionID, game.Status,
	).Scan(&game.ID, &game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) scanGame(rows rowScanner, g *models.Game) error {
	return rows.Scan(
		&g.ID, &g.WhiteID, &g.BlackID, &g.TimeControl, &g.TournamentID, &g.SessionID,
		&g.Status, &g.MoveCount, &g.LastMoveAt, &g.CreatedAt, &g.FinishedAt,
	)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g := &models.Game{}
	if err := r.scanGame(r.db.QueryRowContext(ctx, query, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	return g, nil
}

func (r *postgresGameRepository) Finish(ctx context.Context, exec SQLExecutor, id int, from, to models.GameStatus) error {
	query := `UPDATE games SET status = $1, finished_at = now() WHERE id = $2 AND status = $3`
	result, err := exec.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to finish game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameAlreadyFinished)
}

func (r *postgresGameRepository) listGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g := &models.Game{}
		if err := r.scanGame(rows, g); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) ListBySession(ctx context.Context, sessionID int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE session_id = $1 ORDER BY id ASC`
	return r.listGames(ctx, query, sessionID)
}

func (r *postgresGameRepository) ListStarvedByTournament(ctx context.Context, tournamentID int, cutoff time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE tournament_id = $1 AND status = $2 AND move_count = 0 AND created_at < $3
		ORDER BY created_at ASC`
	return r.listGames(ctx, query, tournamentID, models.GameStatusInProgress, cutoff)
}
