package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

type JoinQueueOutput struct {
	Matched bool         `json:"matched"`
	Game    *models.Game `json:"game,omitempty"`
}

// MatchmakingService runs the simple FIFO queues, one per time control.
type MatchmakingService interface {
	// JoinQueue enqueues the player and immediately pairs them with the
	// oldest waiting opponent if one exists. Matched=false means the entry
	// is waiting; a later join by someone else will complete the match.
	JoinQueue(ctx context.Context, playerID int, timeControl string) (*JoinQueueOutput, error)
	// LeaveQueue removes the player's entry for one time control, or for
	// all of them when timeControl is nil. Returns whether anything was
	// removed; leaving an empty queue is not an error.
	LeaveQueue(ctx context.Context, playerID int, timeControl *string) (bool, error)
}

type matchmakingService struct {
	txRunner   repositories.TxRunner
	queueRepo  repositories.QueueRepository
	playerRepo repositories.PlayerRepository
	gameRepo   repositories.GameRepository
	publisher  EventPublisher
}

func NewMatchmakingService(
	txRunner repositories.TxRunner,
	queueRepo repositories.QueueRepository,
	playerRepo repositories.PlayerRepository,
	gameRepo repositories.GameRepository,
	publisher EventPublisher,
) MatchmakingService {
	return &matchmakingService{
		txRunner:   txRunner,
		queueRepo:  queueRepo,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		publisher:  publisher,
	}
}

func (s *matchmakingService) JoinQueue(ctx context.Context, playerID int, timeControl string) (*JoinQueueOutput, error) {
	if !validTimeControl(timeControl) {
		return nil, ErrInvalidTimeControl
	}

	profile, err := s.playerRepo.GetRating(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load rating for queue join: %w", err)
	}

	queueID := models.TimeControlQueueID(timeControl)
	entry := &models.QueueEntry{
		QueueID:  queueID,
		PlayerID: playerID,
		Elo:      profile.Elo,
		EloMin:   profile.Elo,
		EloMax:   profile.Elo,
	}
	if err := s.queueRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	opponent, err := s.queueRepo.FindOldestWaiting(ctx, queueID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrQueueEntryNotFound) {
			return &JoinQueueOutput{Matched: false}, nil
		}
		return nil, err
	}

	game, err := s.pairUp(ctx, queueID, timeControl, playerID, opponent.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrQueuePairClaimed) {
			// Lost the race for this opponent; our entry stays queued.
			return &JoinQueueOutput{Matched: false}, nil
		}
		return nil, err
	}

	s.publisher.Publish(fmt.Sprintf("player_%d", opponent.PlayerID), "matched", game)
	return &JoinQueueOutput{Matched: true, Game: game}, nil
}

// pairUp removes both queue entries and creates the game as one unit. The
// conditional pair delete guarantees at most one match per entry even when
// two joins race for the same opponent.
func (s *matchmakingService) pairUp(ctx context.Context, queueID, timeControl string, joiner, opponent int) (*models.Game, error) {
	white, black := assignColors(joiner, opponent)
	game := &models.Game{
		WhiteID:     white,
		BlackID:     black,
		TimeControl: timeControl,
		Status:      models.GameStatusInProgress,
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.queueRepo.ClaimPair(ctx, exec, queueID, joiner, opponent); err != nil {
			return err
		}
		return s.gameRepo.Create(ctx, exec, game)
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *matchmakingService) LeaveQueue(ctx context.Context, playerID int, timeControl *string) (bool, error) {
	if timeControl == nil {
		removed, err := s.queueRepo.DeleteByPlayer(ctx, playerID)
		if err != nil {
			return false, err
		}
		return removed > 0, nil
	}

	if !validTimeControl(*timeControl) {
		return false, ErrInvalidTimeControl
	}
	err := s.queueRepo.Delete(ctx, models.TimeControlQueueID(*timeControl), playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrQueueEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
