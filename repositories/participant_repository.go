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
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("player already registered for this tournament")
	// ErrParticipantGameCap: the conditional increment found the participant
	// at or above the concurrent game cap.
	ErrParticipantGameCap = errors.New("participant concurrent game cap reached")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.TournamentParticipant) error
	FindByID(ctx context.Context, id int) (*models.TournamentParticipant, error)
	FindByPlayerAndTournament(ctx context.Context, playerID, tournamentID int) (*models.TournamentParticipant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentParticipant, error)
	// ReserveGameSlot increments active_game_count only while it is below
	// cap; the precondition lives in the WHERE clause so two concurrent
	// pair-ups cannot push a participant past the cap.
	ReserveGameSlot(ctx context.Context, exec SQLExecutor, id, cap int) error
	ReleaseGameSlot(ctx context.Context, exec SQLExecutor, id int) error
	ApplyScoreDelta(ctx context.Context, exec SQLExecutor, id, delta int) error
	// ConsumeLife decrements lives for survival participants, setting
	// eliminated_at exactly once when lives hit zero. Returns whether this
	// call eliminated the participant. Already-eliminated or lifeless
	// (arena) participants are untouched.
	ConsumeLife(ctx context.Context, exec SQLExecutor, id int) (bool, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tournament_id, player_id, score, lives_remaining, eliminated_at, active_game_count, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.TournamentParticipant) error {
	query := `
		INSERT INTO tournament_participants (tournament_id, player_id, lives_remaining)
		VALUES ($1, $2, $3)
		RETURNING id, score, active_game_count, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.PlayerID, p.LivesRemaining).
		Scan(&p.ID, &p.Score, &p.ActiveGameCount, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipantConflict
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rows rowScanner, p *models.TournamentParticipant) error {
	return rows.Scan(&p.ID, &p.TournamentID, &p.PlayerID, &p.Score, &p.LivesRemaining, &p.EliminatedAt, &p.ActiveGameCount, &p.CreatedAt)
}

func (r *postgresParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.TournamentParticipant, error) {
	p := &models.TournamentParticipant{}
	if err := r.scanParticipant(r.db.QueryRowContext(ctx, query, args...), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id int) (*models.TournamentParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM tournament_participants WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresParticipantRepository) FindByPlayerAndTournament(ctx context.Context, playerID, tournamentID int) (*models.TournamentParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM tournament_participants WHERE player_id = $1 AND tournament_id = $2`
	return r.findOne(ctx, query, playerID, tournamentID)
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM tournament_participants WHERE tournament_id = $1 ORDER BY score DESC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.TournamentParticipant, 0)
	for rows.Next() {
		p := &models.TournamentParticipant{}
		if err := r.scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) ReserveGameSlot(ctx context.Context, exec SQLExecutor, id, cap int) error {
	query := `UPDATE tournament_participants SET active_game_count = active_game_count + 1 WHERE id = $1 AND active_game_count < $2`
	result, err := exec.ExecContext(ctx, query, id, cap)
	if err != nil {
		return fmt.Errorf("failed to reserve game slot: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantGameCap)
}

func (r *postgresParticipantRepository) ReleaseGameSlot(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE tournament_participants SET active_game_count = GREATEST(active_game_count - 1, 0) WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release game slot: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ApplyScoreDelta(ctx context.Context, exec SQLExecutor, id, delta int) error {
	query := `UPDATE tournament_participants SET score = score + $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to apply score delta: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ConsumeLife(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	query := `
		UPDATE tournament_participants
		SET lives_remaining = GREATEST(lives_remaining - 1, 0),
		    eliminated_at = CASE WHEN lives_remaining <= 1 THEN now() ELSE eliminated_at END
		WHERE id = $1 AND lives_remaining IS NOT NULL AND eliminated_at IS NULL
		RETURNING eliminated_at IS NOT NULL`

	var eliminated bool
	err := exec.QueryRowContext(ctx, query, id).Scan(&eliminated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Arena participant or already eliminated: lives are untouched.
			return false, nil
		}
		return false, fmt.Errorf("failed to consume life: %w", err)
	}
	return eliminated, nil
}
