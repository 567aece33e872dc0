package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
)

const (
	minPasswordLength = 8
	// Rating a fresh account starts from.
	startingElo = 1500
)

type RegisterInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.Player, error)
}

type authService struct {
	playerRepo repositories.PlayerRepository
}

func NewAuthService(playerRepo repositories.PlayerRepository) AuthService {
	return &authService{playerRepo: playerRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	if strings.TrimSpace(input.Nickname) == "" {
		return nil, ErrNicknameRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !strings.Contains(input.Email, "@") {
		return nil, ErrValidationFailed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		Nickname:     strings.TrimSpace(input.Nickname),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
		Elo:          startingElo,
		Age:          input.Age,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrEmailConflict
		case errors.Is(err, repositories.ErrPlayerNicknameConflict):
			return nil, ErrNicknameConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find player by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}
