package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magicolala/chess-arena/brackets"
	"github.com/magicolala/chess-arena/cache"
	"github.com/magicolala/chess-arena/config"
	"github.com/magicolala/chess-arena/db"
	"github.com/magicolala/chess-arena/handlers"
	"github.com/magicolala/chess-arena/realtime"
	"github.com/magicolala/chess-arena/repositories"
	"github.com/magicolala/chess-arena/routes"
	"github.com/magicolala/chess-arena/services"
	"github.com/magicolala/chess-arena/storage"
)

const (
	dbConnectTimeout = 10 * time.Second
	sweepInterval    = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("service exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("connected to database")

	if err := db.Migrate(database, cfg.MigrationsPath); err != nil {
		return err
	}
	logger.Info("migrations applied")

	rdb, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()
	leaderboard := cache.NewLeaderboard(rdb)
	logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr))

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	hub := realtime.NewHub(logger)
	go hub.Run()

	txRunner := repositories.NewTxRunner(database)
	playerRepo := repositories.NewPostgresPlayerRepository(database)
	gameRepo := repositories.NewPostgresGameRepository(database)
	queueRepo := repositories.NewPostgresQueueRepository(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	participantRepo := repositories.NewPostgresParticipantRepository(database)
	scoreEventRepo := repositories.NewPostgresScoreEventRepository(database)
	eventRepo := repositories.NewPostgresMatchmakingEventRepository(database)
	sessionRepo := repositories.NewPostgresSessionRepository(database)

	authService := services.NewAuthService(playerRepo)
	playerService := services.NewPlayerService(playerRepo, uploader)
	matchmakingService := services.NewMatchmakingService(txRunner, queueRepo, playerRepo, gameRepo, hub)
	ratingService := services.NewRatingService(txRunner, gameRepo, playerRepo, hub)
	tournamentService := services.NewTournamentService(tournamentRepo, participantRepo, leaderboard, logger)
	scoringService := services.NewScoringService(txRunner, tournamentRepo, participantRepo, gameRepo, scoreEventRepo, leaderboard, hub, logger)
	hydraService := services.NewHydraService(txRunner, queueRepo, playerRepo, gameRepo, tournamentRepo, participantRepo, eventRepo, scoringService, hub, logger)
	sessionService := services.NewSessionService(txRunner, sessionRepo, gameRepo, brackets.NewRoundRobinGenerator())

	jwtSecret := []byte(cfg.JWTSecretKey)
	router := routes.New(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, jwtSecret),
		Player:     handlers.NewPlayerHandler(playerService),
		Queue:      handlers.NewQueueHandler(matchmakingService),
		Tournament: handlers.NewTournamentHandler(tournamentService, hydraService, scoringService),
		Session:    handlers.NewSessionHandler(sessionService),
		Game:       handlers.NewGameHandler(ratingService),
		WebSocket:  handlers.NewWebSocketHandler(hub, logger),
	}, jwtSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runSweeper(ctx, hydraService, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// runSweeper drives the tournament pairing sweeps until the context ends.
// Each tick pairs compatible queue entries and forfeits starved games.
func runSweeper(ctx context.Context, hydra services.HydraService, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			matched, err := hydra.ProcessAllQueues(ctx)
			if err != nil {
				logger.Error("queue sweep failed", slog.Any("error", err))
				continue
			}
			if matched > 0 {
				logger.Info("queue sweep paired players", slog.Int("games_created", matched))
			}
		}
	}
}
