package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/repositories"
	"github.com/magicolala/chess-arena/storage"
)

type PlayerService interface {
	GetRating(ctx context.Context, playerID int) (*models.RatingProfile, error)
	// UpdateAvatar uploads the image and records its key on the player.
	UpdateAvatar(ctx context.Context, playerID int, contentType string, body io.Reader) (string, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader}
}

func (s *playerService) GetRating(ctx context.Context, playerID int) (*models.RatingProfile, error) {
	profile, err := s.playerRepo.GetRating(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *playerService) UpdateAvatar(ctx context.Context, playerID int, contentType string, body io.Reader) (string, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return "", ErrPlayerNotFound
		}
		return "", err
	}

	key := fmt.Sprintf("avatars/%d", playerID)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, result.Key); err != nil {
		return "", err
	}
	return result.Location, nil
}
