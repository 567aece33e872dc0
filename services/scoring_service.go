package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

const (
	winDelta  = 3
	drawDelta = 1
	lossDelta = -1
)

type HydraOutcomeKind string

const (
	HydraOutcomeDecisive HydraOutcomeKind = "decisive"
	HydraOutcomeDraw     HydraOutcomeKind = "draw"
	HydraOutcomeForfeit  HydraOutcomeKind = "forfeit"
)

// HydraOutcome is a tagged result so winner/loser resolution is total:
// decisive and forfeit carry participant IDs, draw carries none.
type HydraOutcome struct {
	Kind                HydraOutcomeKind `json:"kind"`
	WinnerParticipantID int              `json:"winner_participant_id,omitempty"`
	LoserParticipantID  int              `json:"loser_participant_id,omitempty"`
}

func DecisiveOutcome(winnerParticipantID, loserParticipantID int) HydraOutcome {
	return HydraOutcome{Kind: HydraOutcomeDecisive, WinnerParticipantID: winnerParticipantID, LoserParticipantID: loserParticipantID}
}

func DrawOutcome() HydraOutcome {
	return HydraOutcome{Kind: HydraOutcomeDraw}
}

func ForfeitOutcome(winnerParticipantID, forfeiterParticipantID int) HydraOutcome {
	return HydraOutcome{Kind: HydraOutcomeForfeit, WinnerParticipantID: winnerParticipantID, LoserParticipantID: forfeiterParticipantID}
}

type RecordHydraResultInput struct {
	TournamentID       int
	GameID             int
	WhiteParticipantID int
	BlackParticipantID int
	Outcome            HydraOutcome
}

type RecordHydraResultOutput struct {
	Scored           bool                 `json:"scored"`
	AlreadyProcessed bool                 `json:"already_processed"`
	Events           []*models.ScoreEvent `json:"events,omitempty"`
	EliminatedIDs    []int                `json:"eliminated_participant_ids,omitempty"`
}

// ScoringService applies tournament score deltas after each hydra game:
// +3 win, +1 each on a draw, -1 loss or forfeit. Survival tournaments also
// consume a life on every loss delta.
type ScoringService interface {
	RecordHydraResult(ctx context.Context, input RecordHydraResultInput) (*RecordHydraResultOutput, error)
}

type scoringService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	gameRepo        repositories.GameRepository
	scoreEventRepo  repositories.ScoreEventRepository
	leaderboard     Leaderboard
	publisher       EventPublisher
	logger          *slog.Logger
}

func NewScoringService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	gameRepo repositories.GameRepository,
	scoreEventRepo repositories.ScoreEventRepository,
	leaderboard Leaderboard,
	publisher EventPublisher,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		gameRepo:        gameRepo,
		scoreEventRepo:  scoreEventRepo,
		leaderboard:     leaderboard,
		publisher:       publisher,
		logger:          logger,
	}
}

// scoreChange is one participant's share of a finished game.
type scoreChange struct {
	participantID int
	delta         int
	reason        models.ScoreReason
}

func changesForOutcome(o HydraOutcome, whiteParticipantID, blackParticipantID int) ([]scoreChange, error) {
	switch o.Kind {
	case HydraOutcomeDraw:
		return []scoreChange{
			{participantID: whiteParticipantID, delta: drawDelta, reason: models.ScoreReasonDraw},
			{participantID: blackParticipantID, delta: drawDelta, reason: models.ScoreReasonDraw},
		}, nil
	case HydraOutcomeDecisive:
		return []scoreChange{
			{participantID: o.WinnerParticipantID, delta: winDelta, reason: models.ScoreReasonWin},
			{participantID: o.LoserParticipantID, delta: lossDelta, reason: models.ScoreReasonLoss},
		}, nil
	case HydraOutcomeForfeit:
		return []scoreChange{
			{participantID: o.WinnerParticipantID, delta: winDelta, reason: models.ScoreReasonWin},
			{participantID: o.LoserParticipantID, delta: lossDelta, reason: models.ScoreReasonForfeit},
		}, nil
	}
	return nil, ErrInvalidOutcome
}

func terminalStatusForHydra(o HydraOutcome, whiteParticipantID int) models.GameStatus {
	if o.Kind == HydraOutcomeDraw {
		return models.GameStatusDraw
	}
	if o.WinnerParticipantID == whiteParticipantID {
		return models.GameStatusWhiteWon
	}
	return models.GameStatusBlackWon
}

func (s *scoringService) RecordHydraResult(ctx context.Context, input RecordHydraResultInput) (*RecordHydraResultOutput, error) {
	changes, err := changesForOutcome(input.Outcome, input.WhiteParticipantID, input.BlackParticipantID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.Status.Terminal() {
		return &RecordHydraResultOutput{AlreadyProcessed: true}, nil
	}

	white, err := s.participantRepo.FindByID(ctx, input.WhiteParticipantID)
	if err != nil {
		return nil, err
	}
	black, err := s.participantRepo.FindByID(ctx, input.BlackParticipantID)
	if err != nil {
		return nil, err
	}
	playerByParticipant := map[int]int{white.ID: white.PlayerID, black.ID: black.PlayerID}

	out := &RecordHydraResultOutput{Scored: true}
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		// Status transition first: it is the only idempotency guard, so all
		// score/life writes ride on winning it.
		terminal := terminalStatusForHydra(input.Outcome, input.WhiteParticipantID)
		if err := s.gameRepo.Finish(ctx, exec, input.GameID, models.GameStatusInProgress, terminal); err != nil {
			return err
		}

		for _, change := range changes {
			event := &models.ScoreEvent{
				ParticipantID: change.participantID,
				GameID:        input.GameID,
				Delta:         change.delta,
				Reason:        change.reason,
			}
			if err := s.scoreEventRepo.Create(ctx, exec, event); err != nil {
				return err
			}
			out.Events = append(out.Events, event)

			if err := s.participantRepo.ApplyScoreDelta(ctx, exec, change.participantID, change.delta); err != nil {
				return err
			}

			if tournament.Mode == models.ModeSurvival && change.delta < 0 {
				eliminated, err := s.participantRepo.ConsumeLife(ctx, exec, change.participantID)
				if err != nil {
					return err
				}
				if eliminated {
					out.EliminatedIDs = append(out.EliminatedIDs, change.participantID)
				}
			}
		}

		if err := s.participantRepo.ReleaseGameSlot(ctx, exec, input.WhiteParticipantID); err != nil {
			return err
		}
		return s.participantRepo.ReleaseGameSlot(ctx, exec, input.BlackParticipantID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGameAlreadyFinished) {
			return &RecordHydraResultOutput{AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	room := tournamentRoom(input.TournamentID)
	for _, change := range changes {
		if err := s.leaderboard.IncrScore(ctx, input.TournamentID, playerByParticipant[change.participantID], change.delta); err != nil {
			s.logger.Warn("leaderboard update failed",
				slog.Int("tournament_id", input.TournamentID),
				slog.Int("participant_id", change.participantID),
				slog.Any("error", err))
		}
	}
	s.publisher.Publish(room, "score_updated", out.Events)
	for _, id := range out.EliminatedIDs {
		s.publisher.Publish(room, "eliminated", map[string]int{"participant_id": id, "player_id": playerByParticipant[id]})
	}
	return out, nil
}
