package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/rating"
	"github.com/magicolala/chess-arena/repositories"
)

type RecordResultOutput struct {
	AlreadyProcessed bool `json:"already_processed"`
	WhiteDelta       int  `json:"white_delta"`
	BlackDelta       int  `json:"black_delta"`
	WhiteElo         int  `json:"white_elo"`
	BlackElo         int  `json:"black_elo"`
}

// RatingService applies Elo updates for finished queue games.
type RatingService interface {
	// RecordResult scores a finished game exactly once. Re-invocation on an
	// already-settled game is reported as already processed, not an error.
	RecordResult(ctx context.Context, gameID int, outcome models.Outcome) (*RecordResultOutput, error)
}

type ratingService struct {
	txRunner   repositories.TxRunner
	gameRepo   repositories.GameRepository
	playerRepo repositories.PlayerRepository
	publisher  EventPublisher
}

func NewRatingService(
	txRunner repositories.TxRunner,
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	publisher EventPublisher,
) RatingService {
	return &ratingService{
		txRunner:   txRunner,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		publisher:  publisher,
	}
}

func (s *ratingService) RecordResult(ctx context.Context, gameID int, outcome models.Outcome) (*RecordResultOutput, error) {
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.Status.Terminal() {
		return &RecordResultOutput{AlreadyProcessed: true}, nil
	}

	white, err := s.playerRepo.GetRating(ctx, game.WhiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load white rating: %w", err)
	}
	black, err := s.playerRepo.GetRating(ctx, game.BlackID)
	if err != nil {
		return nil, fmt.Errorf("failed to load black rating: %w", err)
	}

	whiteDelta := rating.DeltaForProfile(*white, black.Elo, outcome, true)
	blackDelta := rating.DeltaForProfile(*black, white.Elo, outcome, false)

	// The status transition is the idempotency guard: whichever caller wins
	// it applies the rating changes; everybody else sees already-processed.
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.gameRepo.Finish(ctx, exec, gameID, models.GameStatusInProgress, outcome.TerminalStatus()); err != nil {
			return err
		}
		if err := s.playerRepo.UpdateRating(ctx, exec, white.PlayerID, white.Elo+whiteDelta, white.GamesPlayed+1); err != nil {
			return err
		}
		return s.playerRepo.UpdateRating(ctx, exec, black.PlayerID, black.Elo+blackDelta, black.GamesPlayed+1)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGameAlreadyFinished) {
			return &RecordResultOutput{AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	out := &RecordResultOutput{
		WhiteDelta: whiteDelta,
		BlackDelta: blackDelta,
		WhiteElo:   white.Elo + whiteDelta,
		BlackElo:   black.Elo + blackDelta,
	}
	s.publisher.Publish(fmt.Sprintf("player_%d", game.WhiteID), "score_updated", out)
	s.publisher.Publish(fmt.Sprintf("player_%d", game.BlackID), "score_updated", out)
	return out, nil
}
