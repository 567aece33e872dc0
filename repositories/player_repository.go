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
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerEmailConflict    = errors.New("player email already in use")
	ErrPlayerNicknameConflict = errors.New("player nickname already in use")
)

type PlayerRepository interface {
	Create(ctx context.Context, p *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	GetRating(ctx context.Context, playerID int) (*models.RatingProfile, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, playerID, elo, gamesPlayed int) error
	UpdateAvatarKey(ctx context.Context, playerID int, key string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (nickname, email, password_hash, elo, games_played, age)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Nickname, p.Email, p.PasswordHash, p.Elo, p.GamesPlayed, p.Age,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "players_email_key":
				return ErrPlayerEmailConflict
			case "players_nickname_key":
				return ErrPlayerNicknameConflict
			}
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row, p *models.Player) error {
	return row.Scan(&p.ID, &p.Nickname, &p.Email, &p.PasswordHash, &p.Elo, &p.GamesPlayed, &p.Age, &p.AvatarKey, &p.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, nickname, email, password_hash, elo, games_played, age, avatar_key, created_at FROM players WHERE id = $1`
	p := &models.Player{}
	if err := r.scanPlayer(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player by id: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	query := `SELECT id, nickname, email, password_hash, elo, games_played, age, avatar_key, created_at FROM players WHERE email = $1`
	p := &models.Player{}
	if err := r.scanPlayer(r.db.QueryRowContext(ctx, query, email), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetRating(ctx context.Context, playerID int) (*models.RatingProfile, error) {
	query := `SELECT id, elo, games_played, age FROM players WHERE id = $1`
	profile := &models.RatingProfile{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&profile.PlayerID, &profile.Elo, &profile.GamesPlayed, &profile.Age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load rating profile: %w", err)
	}
	return profile, nil
}

func (r *postgresPlayerRepository) UpdateRating(ctx context.Context, exec SQLExecutor, playerID, elo, gamesPlayed int) error {
	query := `UPDATE players SET elo = $1, games_played = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, elo, gamesPlayed, playerID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, playerID int, key string) error {
	query := `UPDATE players SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, playerID)
	if err != nil {
		return fmt.Errorf("failed to update avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
