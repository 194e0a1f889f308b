package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/auth/jwt"
	"github.com/codecrafters-dev/platform/internal/challenge"
	"github.com/codecrafters-dev/platform/internal/config"
	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/logging"
	"github.com/codecrafters-dev/platform/internal/media"
	"github.com/codecrafters-dev/platform/internal/metrics"
	"github.com/codecrafters-dev/platform/internal/profile"
	"github.com/codecrafters-dev/platform/internal/progress"
	"github.com/codecrafters-dev/platform/internal/server"
	"github.com/codecrafters-dev/platform/internal/submission"
	ws "github.com/codecrafters-dev/platform/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	broadcaster *progress.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps the logger, Postgres, Redis, the submission pipeline and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	challengeRepo := repository.NewChallengeRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret:    []byte(cfg.Security.JWTSecret),
		AccessTTL: cfg.Security.AccessTTL,
		Issuer:    cfg.Security.JWTIssuer,
	})

	m := metrics.New()

	uploader, err := media.NewUploader(media.Config{
		BaseURL:      cfg.Storage.BaseURL,
		CloudName:    cfg.Storage.CloudName,
		UploadPreset: cfg.Storage.UploadPreset,
		Timeout:      cfg.Storage.HTTPTimeout,
	}, nil, m, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure storage: %w", err)
	}

	publisher := progress.NewPublisher(redisClient, cfg.Submission.ProgressChannel, logger)
	hub := ws.NewHub(logger)
	broadcaster := progress.NewBroadcaster(redisClient, hub, cfg.Submission.ProgressChannel, logger)

	challengeSvc := challenge.NewService(challengeRepo, nil, logger)
	challengeHandlers := challenge.NewHTTPHandlers(
		challengeSvc,
		uploader,
		challenge.NewRedisLocker(redisClient, cfg.Submission.LockTTL),
		challenge.SubmitOptions{
			MaxMemory:     cfg.Submission.MaxMemoryBytes,
			MaxBodyBytes:  cfg.Submission.MaxBodyBytes,
			UploadTimeout: cfg.Submission.UploadTimeout,
			Observers: func(userID uuid.UUID) []submission.Observer {
				return []submission.Observer{m.ObserveTransition, publisher.Observer(userID)}
			},
		},
		logger,
	)

	profileSvc := profile.NewService(userRepo, challengeRepo, profile.NewRedisCache(redisClient, cfg.Profile.CacheTTL), logger)
	profileHandlers := profile.NewHTTPHandlers(profileSvc, logger)

	progressHandler := progress.NewHandler(hub, server.NewWSUpgrader(cfg.CORS.AllowedOrigins), logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Handlers{
		Challenges: challengeHandlers,
		Profiles:   profileHandlers,
		Progress:   progressHandler,
		Tokens:     tokens,
		Metrics:    m,
		Deps: []server.Pinger{
			server.PingerFunc(pool.Ping),
			server.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		},
	})

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		broadcaster: broadcaster,
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("submission progress broadcaster stopped")
			}
		}()
	}
}
