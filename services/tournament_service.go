package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

const defaultSurvivalLives = 3

type CreateTournamentInput struct {
	Name         string                `json:"name"`
	Mode         models.TournamentMode `json:"mode"`
	TimeControl  string                `json:"time_control"`
	InitialLives *int                  `json:"initial_lives,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	JoinTournament(ctx context.Context, playerID, tournamentID int) (*models.TournamentParticipant, error)
	// GetLeaderboard reads the cached standings, falling back to the
	// authoritative participant rows when the cache is empty.
	GetLeaderboard(ctx context.Context, tournamentID, limit int) ([]models.LeaderboardEntry, error)
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	leaderboard     Leaderboard
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	leaderboard Leaderboard,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		leaderboard:     leaderboard,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if !input.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if !validTimeControl(input.TimeControl) {
		return nil, ErrInvalidTimeControl
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Mode:        input.Mode,
		TimeControl: input.TimeControl,
		Status:      models.TournamentStatusActive,
	}
	if input.Mode == models.ModeSurvival {
		lives := defaultSurvivalLives
		if input.InitialLives != nil && *input.InitialLives > 0 {
			lives = *input.InitialLives
		}
		tournament.InitialLives = &lives
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) JoinTournament(ctx context.Context, playerID, tournamentID int) (*models.TournamentParticipant, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusActive {
		return nil, ErrTournamentNotActive
	}

	participant := &models.TournamentParticipant{
		TournamentID: tournamentID,
		PlayerID:     playerID,
	}
	if tournament.Mode == models.ModeSurvival && tournament.InitialLives != nil {
		lives := *tournament.InitialLives
		participant.LivesRemaining = &lives
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	return participant, nil
}

func (s *tournamentService) GetLeaderboard(ctx context.Context, tournamentID, limit int) ([]models.LeaderboardEntry, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.leaderboard.Top(ctx, tournamentID, limit)
	if err != nil {
		s.logger.Warn("leaderboard cache read failed, falling back to store",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	if len(entries) > 0 {
		return entries, nil
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	entries = make([]models.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		if len(entries) == limit {
			break
		}
		entries = append(entries, models.LeaderboardEntry{PlayerID: p.PlayerID, Score: p.Score})
	}
	return entries, nil
}
