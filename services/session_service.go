package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magicolala/chess-arena/brackets"
	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

type CreateSessionInput struct {
	TimeControl string `json:"time_control"`
}

// SessionService manages private round-robin sessions: draft creation with an
// invite code, joining, and the one-shot start that generates every pairing.
type SessionService interface {
	CreateSession(ctx context.Context, organizerID int, input CreateSessionInput) (*models.Session, error)
	GetSession(ctx context.Context, sessionID int) (*models.Session, error)
	JoinByInvite(ctx context.Context, playerID int, inviteCode string) (*models.SessionParticipant, error)
	// StartSession transitions draft->started and creates the full
	// n(n-1)/2 game batch as a single unit: if any game insert fails the
	// session stays in draft.
	StartSession(ctx context.Context, sessionID, callerID int) (int, error)
	ListSessionGames(ctx context.Context, sessionID int) ([]*models.Game, error)
}

type sessionService struct {
	txRunner    repositories.TxRunner
	sessionRepo repositories.SessionRepository
	gameRepo    repositories.GameRepository
	generator   brackets.PairingGenerator
}

func NewSessionService(
	txRunner repositories.TxRunner,
	sessionRepo repositories.SessionRepository,
	gameRepo repositories.GameRepository,
	generator brackets.PairingGenerator,
) SessionService {
	return &sessionService{
		txRunner:    txRunner,
		sessionRepo: sessionRepo,
		gameRepo:    gameRepo,
		generator:   generator,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, organizerID int, input CreateSessionInput) (*models.Session, error) {
	if !validTimeControl(input.TimeControl) {
		return nil, ErrInvalidTimeControl
	}

	session := &models.Session{
		OrganizerID: organizerID,
		InviteCode:  strings.Split(uuid.NewString(), "-")[0],
		TimeControl: input.TimeControl,
		Status:      models.SessionStatusDraft,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	// The organizer plays too.
	participant := &models.SessionParticipant{SessionID: session.ID, PlayerID: organizerID}
	if err := s.sessionRepo.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}
	session.Participants = []models.SessionParticipant{*participant}
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID int) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	participants, err := s.sessionRepo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Participants = make([]models.SessionParticipant, 0, len(participants))
	for _, p := range participants {
		session.Participants = append(session.Participants, *p)
	}
	return session, nil
}

func (s *sessionService) JoinByInvite(ctx context.Context, playerID int, inviteCode string) (*models.SessionParticipant, error) {
	if inviteCode == "" {
		return nil, ErrInviteInvalid
	}
	session, err := s.sessionRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}
	if session.Status != models.SessionStatusDraft {
		return nil, ErrSessionNotDraft
	}

	participant := &models.SessionParticipant{SessionID: session.ID, PlayerID: playerID}
	if err := s.sessionRepo.AddParticipant(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrSessionParticipantConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	return participant, nil
}

func (s *sessionService) StartSession(ctx context.Context, sessionID, callerID int) (int, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	if session.OrganizerID != callerID {
		return 0, ErrForbiddenOperation
	}

	participants, err := s.sessionRepo.ListParticipants(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(participants) < 2 {
		return 0, ErrNotEnoughParticipants
	}

	playerIDs := make([]int, 0, len(participants))
	for _, p := range participants {
		playerIDs = append(playerIDs, p.PlayerID)
	}
	pairings, err := s.generator.GeneratePairings(playerIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughParticipants) {
			return 0, ErrNotEnoughParticipants
		}
		return 0, err
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sessionRepo.MarkStarted(ctx, exec, sessionID); err != nil {
			return err
		}
		for _, pairing := range pairings {
			game := &models.Game{
				WhiteID:     pairing.WhiteID,
				BlackID:     pairing.BlackID,
				TimeControl: session.TimeControl,
				SessionID:   &session.ID,
				Status:      models.GameStatusInProgress,
			}
			if err := s.gameRepo.Create(ctx, exec, game); err != nil {
				return fmt.Errorf("failed to create session game: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotDraft) {
			return 0, ErrSessionNotDraft
		}
		return 0, err
	}

	return len(pairings), nil
}

func (s *sessionService) ListSessionGames(ctx context.Context, sessionID int) ([]*models.Game, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s.gameRepo.ListBySession(ctx, sessionID)
}
