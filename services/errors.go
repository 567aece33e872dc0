package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidTimeControl = errors.New("missing or unsupported time control")
	ErrInvalidOutcome     = errors.New("invalid game outcome")
	ErrInvalidMode        = errors.New("invalid tournament mode")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrNicknameRequired   = errors.New("nickname is required")

	// Preconditions
	ErrGameCapReached        = errors.New("concurrent game cap reached")
	ErrNotEnoughParticipants = errors.New("at least 2 participants are required to start")
	ErrSessionNotDraft       = errors.New("session already started")
	ErrTournamentNotActive   = errors.New("tournament is not active")
	ErrNotRegistered         = errors.New("player is not registered for this tournament")

	// Conflicts
	ErrEmailConflict        = errors.New("email address is already in use")
	ErrNicknameConflict     = errors.New("nickname is already in use")
	ErrRegistrationConflict = errors.New("already registered")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Entity-specific
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInviteInvalid      = errors.New("invite code not recognized")
)
