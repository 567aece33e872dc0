package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/magicolala/chess-arena/models"
)

var (
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	// ErrQueuePairClaimed signals that at least one of the two entries was
	// removed by a concurrent pairing before we could claim it.
	ErrQueuePairClaimed = errors.New("queue entries already claimed by a concurrent match")
)

type QueueRepository interface {
	// Upsert inserts or refreshes the single live entry a player may hold in
	// a queue. Rejoining resets the window and the enqueue time.
	Upsert(ctx context.Context, entry *models.QueueEntry) error
	FindOldestWaiting(ctx context.Context, queueID string, excludePlayerID int) (*models.QueueEntry, error)
	ListByQueue(ctx context.Context, queueID string) ([]*models.QueueEntry, error)
	UpdateWindow(ctx context.Context, id, eloMin, eloMax int, lastRangeUpdateAt time.Time) error
	Delete(ctx context.Context, queueID string, playerID int) error
	// DeleteByPlayer removes a player's entries from every simple
	// time-control queue; returns how many were removed.
	DeleteByPlayer(ctx context.Context, playerID int) (int64, error)
	// ClaimPair conditionally deletes both matched entries. The claim only
	// succeeds if both rows still exist, so a double-match race degrades to
	// one winner and one caller seeing ErrQueuePairClaimed.
	ClaimPair(ctx context.Context, exec SQLExecutor, queueID string, playerA, playerB int) error
}

type postgresQueueRepository struct {
	db *sql.DB
}

func NewPostgresQueueRepository(db *sql.DB) QueueRepository {
	return &postgresQueueRepository{db: db}
}

const queueEntryColumns = `id, queue_id, player_id, elo, elo_min, elo_max, last_range_update_at, enqueued_at`

func (r *postgresQueueRepository) Upsert(ctx context.Context, entry *models.QueueEntry) error {
	query := `
		INSERT INTO queue_entries (queue_id, player_id, elo, elo_min, elo_max, last_range_update_at, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (queue_id, player_id) DO UPDATE
		SET elo = EXCLUDED.elo,
		    elo_min = EXCLUDED.elo_min,
		    elo_max = EXCLUDED.elo_max,
		    last_range_update_at = EXCLUDED.last_range_update_at,
		    enqueued_at = EXCLUDED.enqueued_at
		RETURNING id, last_range_update_at, enqueued_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.QueueID, entry.PlayerID, entry.Elo, entry.EloMin, entry.EloMax,
	).Scan(&entry.ID, &entry.LastRangeUpdateAt, &entry.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert queue entry: %w", err)
	}
	return nil
}

func (r *postgresQueueRepository) scanEntry(rows rowScanner, e *models.QueueEntry) error {
	return rows.Scan(&e.ID, &e.QueueID, &e.PlayerID, &e.Elo, &e.EloMin, &e.EloMax, &e.LastRangeUpdateAt, &e.EnqueuedAt)
}

func (r *postgresQueueRepository) FindOldestWaiting(ctx context.Context, queueID string, excludePlayerID int) (*models.QueueEntry, error) {
	query := `
		SELECT ` + queueEntryColumns + `
		FROM queue_entries
		WHERE queue_id = $1 AND player_id <> $2
		ORDER BY enqueued_at ASC
		LIMIT 1`

	e := &models.QueueEntry{}
	if err := r.scanEntry(r.db.QueryRowContext(ctx, query, queueID, excludePlayerID), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQueueEntryNotFound
		}
		return nil, fmt.Errorf("failed to find waiting entry: %w", err)
	}
	return e, nil
}

func (r *postgresQueueRepository) ListByQueue(ctx context.Context, queueID string) ([]*models.QueueEntry, error) {
	query := `SELECT ` + queueEntryColumns + ` FROM queue_entries WHERE queue_id = $1 ORDER BY enqueued_at ASC`
	rows, err := r.db.QueryContext(ctx, query, queueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.QueueEntry, 0)
	for rows.Next() {
		e := &models.QueueEntry{}
		if err := r.scanEntry(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue entries: %w", err)
	}
	return entries, nil
}

func (r *postgresQueueRepository) UpdateWindow(ctx context.Context, id, eloMin, eloMax int, lastRangeUpdateAt time.Time) error {
	query := `UPDATE queue_entries SET elo_min = $1, elo_max = $2, last_range_update_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, eloMin, eloMax, lastRangeUpdateAt, id)
	if err != nil {
		return fmt.Errorf("failed to update queue entry window: %w", err)
	}
	return checkAffectedRows(result, ErrQueueEntryNotFound)
}

func (r *postgresQueueRepository) Delete(ctx context.Context, queueID string, playerID int) error {
	query := `DELETE FROM queue_entries WHERE queue_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, queueID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return checkAffectedRows(result, ErrQueueEntryNotFound)
}

func (r *postgresQueueRepository) DeleteByPlayer(ctx context.Context, playerID int) (int64, error) {
	query := `DELETE FROM queue_entries WHERE player_id = $1 AND queue_id LIKE 'tc:%'`
	result, err := r.db.ExecContext(ctx, query, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete queue entries for player: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return removed, nil
}

func (r *postgresQueueRepository) ClaimPair(ctx context.Context, exec SQLExecutor, queueID string, playerA, playerB int) error {
	query := `DELETE FROM queue_entries WHERE queue_id = $1 AND player_id = ANY($2)`
	result, err := exec.ExecContext(ctx, query, queueID, pq.Array([]int{playerA, playerB}))
	if err != nil {
		return fmt.Errorf("failed to claim queue pair: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected != 2 {
		return ErrQueuePairClaimed
	}
	return nil
}
