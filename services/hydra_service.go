package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

const (
	// Initial half-width of the Elo window on join.
	initialWindowHalfWidth = 100
	// Every full widenInterval since the last range update adds widenStep
	// to each side of the window.
	widenStep     = 50
	widenInterval = 10 * time.Second

	// Per-tournament cap on concurrently running games.
	hydraGameCap = 9

	// Games with zero moves after this long are forfeited by the sweep.
	starvationTimeout = 20 * time.Second

	sweepConcurrency = 4
)

type HydraJoinOutput struct {
	Status string `json:"status"`
	EloMin int    `json:"elo_min"`
	EloMax int    `json:"elo_max"`
}

// HydraService runs the Elo-windowed tournament queues: joins bounded by a
// rating window that widens over time, a periodic pairing sweep, and the
// starvation guard that forfeits games nobody started playing.
type HydraService interface {
	JoinQueue(ctx context.Context, playerID, tournamentID, maxGames int) (*HydraJoinOutput, error)
	// LeaveQueue withdraws the player's waiting entry from a tournament
	// queue. Running games are unaffected; leaving when not queued is a
	// no-op. Returns whether an entry was removed.
	LeaveQueue(ctx context.Context, playerID, tournamentID int) (bool, error)
	// ProcessQueue is the pairing sweep for one tournament. Safe to invoke
	// concurrently with itself and with joins; races degrade to entries
	// staying queued for the next sweep.
	ProcessQueue(ctx context.Context, tournamentID int) (int, error)
	ProcessAllQueues(ctx context.Context) (int, error)
}

type hydraService struct {
	txRunner        repositories.TxRunner
	queueRepo       repositories.QueueRepository
	playerRepo      repositories.PlayerRepository
	gameRepo        repositories.GameRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	eventRepo       repositories.MatchmakingEventRepository
	scoringService  ScoringService
	publisher       EventPublisher
	logger          *slog.Logger
}

func NewHydraService(
	txRunner repositories.TxRunner,
	queueRepo repositories.QueueRepository,
	playerRepo repositories.PlayerRepository,
	gameRepo repositories.GameRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	eventRepo repositories.MatchmakingEventRepository,
	scoringService ScoringService,
	publisher EventPublisher,
	logger *slog.Logger,
) HydraService {
	return &hydraService{
		txRunner:        txRunner,
		queueRepo:       queueRepo,
		playerRepo:      playerRepo,
		gameRepo:        gameRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		scoringService:  scoringService,
		publisher:       publisher,
		logger:          logger,
	}
}

// WidenWindow applies the coarse widening rule: one widenStep per side for
// every full widenInterval elapsed. The returned consumed duration is the
// whole number of intervals actually used, so callers advance the range
// clock without losing the fractional remainder.
func WidenWindow(eloMin, eloMax int, elapsed time.Duration) (newMin, newMax int, consumed time.Duration) {
	steps := int(elapsed / widenInterval)
	if steps <= 0 {
		return eloMin, eloMax, 0
	}
	return eloMin - widenStep*steps, eloMax + widenStep*steps, time.Duration(steps) * widenInterval
}

func (s *hydraService) JoinQueue(ctx context.Context, playerID, tournamentID, maxGames int) (*HydraJoinOutput, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.TournamentStatusActive {
		return nil, ErrTournamentNotActive
	}

	participant, err := s.participantRepo.FindByPlayerAndTournament(ctx, playerID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	cap := hydraGameCap
	if maxGames > 0 && maxGames < cap {
		cap = maxGames
	}
	if participant.ActiveGameCount >= cap {
		return nil, ErrGameCapReached
	}

	profile, err := s.playerRepo.GetRating(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating for hydra join: %w", err)
	}

	entry := &models.QueueEntry{
		QueueID:  models.TournamentQueueID(tournamentID),
		PlayerID: playerID,
		Elo:      profile.Elo,
		EloMin:   profile.Elo - initialWindowHalfWidth,
		EloMax:   profile.Elo + initialWindowHalfWidth,
	}
	if err := s.queueRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	s.audit(ctx, tournamentID, playerID, models.MatchmakingEventJoin, nil)
	return &HydraJoinOutput{Status: "waiting", EloMin: entry.EloMin, EloMax: entry.EloMax}, nil
}

func (s *hydraService) LeaveQueue(ctx context.Context, playerID, tournamentID int) (bool, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return false, ErrTournamentNotFound
		}
		return false, err
	}

	err := s.queueRepo.Delete(ctx, models.TournamentQueueID(tournamentID), playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrQueueEntryNotFound) {
			return false, nil
		}
		return false, err
	}

	s.audit(ctx, tournamentID, playerID, models.MatchmakingEventLeave, nil)
	return true, nil
}

func (s *hydraService) ProcessQueue(ctx context.Context, tournamentID int) (int, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	if err := s.forfeitStarvedGames(ctx, tournament); err != nil {
		// Starvation handling is a sweep-time side effect; pairing still runs.
		s.logger.Warn("starvation sweep failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	queueID := models.TournamentQueueID(tournamentID)
	entries, err := s.queueRepo.ListByQueue(ctx, queueID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	matchedCount := 0
	matched := make(map[int]bool, len(entries))

	for i, entry := range entries {
		if matched[entry.PlayerID] {
			continue
		}

		eloMin, eloMax, consumed := WidenWindow(entry.EloMin, entry.EloMax, now.Sub(entry.LastRangeUpdateAt))
		if consumed > 0 {
			entry.EloMin, entry.EloMax = eloMin, eloMax
			entry.LastRangeUpdateAt = entry.LastRangeUpdateAt.Add(consumed)
			if err := s.queueRepo.UpdateWindow(ctx, entry.ID, entry.EloMin, entry.EloMax, entry.LastRangeUpdateAt); err != nil &&
				!errors.Is(err, repositories.ErrQueueEntryNotFound) {
				return matchedCount, err
			}
		}

		for _, candidate := range entries[i+1:] {
			if matched[candidate.PlayerID] || candidate.Elo < entry.EloMin || candidate.Elo > entry.EloMax {
				continue
			}
			game, err := s.pairUp(ctx, tournament, queueID, entry.PlayerID, candidate.PlayerID)
			if err != nil {
				if errors.Is(err, repositories.ErrQueuePairClaimed) ||
					errors.Is(err, repositories.ErrParticipantGameCap) ||
					errors.Is(err, repositories.ErrParticipantNotFound) {
					// Entry claimed by a concurrent sweep or candidate is
					// capped out; try the next candidate.
					continue
				}
				return matchedCount, err
			}
			matched[entry.PlayerID] = true
			matched[candidate.PlayerID] = true
			matchedCount++

			s.audit(ctx, tournamentID, entry.PlayerID, models.MatchmakingEventMatch, &game.ID)
			s.audit(ctx, tournamentID, candidate.PlayerID, models.MatchmakingEventMatch, &game.ID)
			s.publisher.Publish(tournamentRoom(tournamentID), "matched", game)
			break
		}
	}

	return matchedCount, nil
}

// pairUp claims both entries, reserves a game slot on both participants and
// creates the hydra game as one unit; any precondition failure rolls back
// everything and the callers stay queued.
func (s *hydraService) pairUp(ctx context.Context, tournament *models.Tournament, queueID string, playerA, playerB int) (*models.Game, error) {
	participantA, err := s.participantRepo.FindByPlayerAndTournament(ctx, playerA, tournament.ID)
	if err != nil {
		return nil, err
	}
	participantB, err := s.participantRepo.FindByPlayerAndTournament(ctx, playerB, tournament.ID)
	if err != nil {
		return nil, err
	}

	white, black := assignColors(playerA, playerB)
	game := &models.Game{
		WhiteID:      white,
		BlackID:      black,
		TimeControl:  tournament.TimeControl,
		TournamentID: &tournament.ID,
		Status:       models.GameStatusInProgress,
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.queueRepo.ClaimPair(ctx, exec, queueID, playerA, playerB); err != nil {
			return err
		}
		if err := s.participantRepo.ReserveGameSlot(ctx, exec, participantA.ID, hydraGameCap); err != nil {
			return err
		}
		if err := s.participantRepo.ReserveGameSlot(ctx, exec, participantB.ID, hydraGameCap); err != nil {
			return err
		}
		return s.gameRepo.Create(ctx, exec, game)
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// forfeitStarvedGames auto-forfeits tournament games where nobody played a
// move within the inactivity window, freeing both participants' slots. White
// moves first, so a moveless game is forfeited by white.
func (s *hydraService) forfeitStarvedGames(ctx context.Context, tournament *models.Tournament) error {
	cutoff := time.Now().Add(-starvationTimeout)
	starved, err := s.gameRepo.ListStarvedByTournament(ctx, tournament.ID, cutoff)
	if err != nil {
		return err
	}

	for _, game := range starved {
		forfeiter, err := s.participantRepo.FindByPlayerAndTournament(ctx, game.WhiteID, tournament.ID)
		if err != nil {
			return err
		}
		winner, err := s.participantRepo.FindByPlayerAndTournament(ctx, game.BlackID, tournament.ID)
		if err != nil {
			return err
		}

		_, err = s.scoringService.RecordHydraResult(ctx, RecordHydraResultInput{
			TournamentID:       tournament.ID,
			GameID:             game.ID,
			WhiteParticipantID: forfeiter.ID,
			BlackParticipantID: winner.ID,
			Outcome:            ForfeitOutcome(winner.ID, forfeiter.ID),
		})
		if err != nil {
			return err
		}
		s.logger.Info("forfeited starved game",
			slog.Int("game_id", game.ID),
			slog.Int("tournament_id", tournament.ID))
	}
	return nil
}

func (s *hydraService) ProcessAllQueues(ctx context.Context) (int, error) {
	tournaments, err := s.tournamentRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	results := make([]int, len(tournaments))

	for i, tournament := range tournaments {
		i, tournament := i, tournament
		g.Go(func() error {
			count, err := s.ProcessQueue(ctx, tournament.ID)
			if err != nil {
				return fmt.Errorf("sweep failed for tournament %d: %w", tournament.ID, err)
			}
			results[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range results {
		total += c
	}
	return total, nil
}

func (s *hydraService) audit(ctx context.Context, tournamentID, playerID int, eventType models.MatchmakingEventType, gameID *int) {
	event := &models.MatchmakingEvent{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Type:         eventType,
		GameID:       gameID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Warn("failed to record matchmaking event",
			slog.Int("tournament_id", tournamentID),
			slog.Int("player_id", playerID),
			slog.String("type", string(eventType)),
			slog.Any("error", err))
	}
}
