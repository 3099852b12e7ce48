package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/patente-quiz/internal/auth"
	"github.com/gokatarajesh/patente-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/patente-quiz/internal/config"
	"github.com/gokatarajesh/patente-quiz/internal/db/queries"
	"github.com/gokatarajesh/patente-quiz/internal/db/repository"
	"github.com/gokatarajesh/patente-quiz/internal/leaderboard"
	"github.com/gokatarajesh/patente-quiz/internal/llm"
	"github.com/gokatarajesh/patente-quiz/internal/persist"
	"github.com/gokatarajesh/patente-quiz/internal/question"
	"github.com/gokatarajesh/patente-quiz/internal/quiz"
	"github.com/gokatarajesh/patente-quiz/internal/registry"
	"github.com/gokatarajesh/patente-quiz/internal/rewards"
	"github.com/gokatarajesh/patente-quiz/internal/server"
	"github.com/gokatarajesh/patente-quiz/internal/translation"
	"github.com/gokatarajesh/patente-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	persister     *persist.Persister
	sweeper       *quiz.Sweeper
	backfill      *translation.BackfillWorker
	lbBroadcaster *leaderboard.Broadcaster
}

// New connects the stores and builds every service.
func New(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Application, error) {
	logger.Info().Msg("starting application bootstrap")

	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.Postgres.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	q := queries.New(pool)
	userRepo := repository.NewUserRepository(q)
	profileRepo := repository.NewProfileRepository(q)
	progressRepo := repository.NewProgressRepository(q)
	markRepo := repository.NewMarkRepository(q)
	questionRepo := repository.NewQuestionRepository(q)
	translationRepo := repository.NewTranslationRepository(q)

	wsHub := ws.NewHub(logger)
	persister := persist.New(logger, cfg.Rewards.PersistTimeout)

	clock, err := rewards.NewSystemClock(cfg.Rewards.Timezone)
	if err != nil {
		return nil, fmt.Errorf("rewards clock: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Rewards.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Rewards.Timezone, err)
	}

	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:     cfg.Leaderboard.TopN,
		Location: loc,
	})
	lbBroadcaster := leaderboard.NewBroadcaster(leaderboardSvc, redisClient, wsHub, "", logger)

	rewardsSvc := rewards.NewService(profileRepo, progressRepo, persister, clock, rewards.ServiceOptions{
		XP:        leaderboardSvc,
		Publisher: wsHub,
	}, logger)
	registrySvc := registry.NewService(markRepo, persister, wsHub, logger)

	authSvc := auth.NewService(userRepo, profileRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte(cfg.Security.JWTSecret),
			RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
			AccessTTL:     cfg.Security.AccessTTL,
			RefreshTTL:    cfg.Security.RefreshTTL,
			Issuer:        cfg.Name,
		},
		Redis: redisClient,
	}, logger)

	questionSvc := question.NewService(questionRepo, question.NewCache(redisClient, 0), logger)

	functions, generator, err := buildGenerators(ctx, cfg, questionSvc, translationRepo, logger)
	if err != nil {
		return nil, err
	}
	backfill := translation.NewBackfillWorker(generator, cfg.Quiz.BackfillQueue, cfg.AI.Timeout, logger)
	translationClient := translation.NewClient(generator, translation.ClientOptions{
		Cache:    translation.NewCache(redisClient, cfg.Translate.CacheTTL),
		Store:    translationRepo,
		Words:    translation.NewWordTranslator(cfg.Translate.WordURL, cfg.Translate.HTTPTimeout),
		Backfill: backfill,
	}, logger)

	quizHub := quiz.NewHub()
	quizSvc := quiz.NewService(quiz.Deps{
		Hub:       quizHub,
		Questions: questionSvc,
		Ledgers: func(ctx context.Context, userID uuid.UUID) (quiz.Ledger, error) {
			l, err := rewardsSvc.Ledger(ctx, userID)
			if err != nil {
				return nil, err
			}
			return l, nil
		},
		Marks: func(ctx context.Context, userID uuid.UUID) (quiz.Marks, error) {
			r, err := registrySvc.Registry(ctx, userID)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Explainer:      translationClient,
		Publisher:      wsHub,
		XPPerCorrect:   cfg.Rewards.XPPerCorrect,
		SourceLanguage: cfg.Quiz.SourceLanguage,
	}, logger)
	sweeper := quiz.NewSweeper(quizHub, cfg.Quiz.SessionIdleTTL, cfg.Quiz.SweepInterval, logger)
	sweeper.Track("ledgers", rewardsSvc)
	sweeper.Track("registries", registrySvc)

	authSvc.OnSignOut(func(userID uuid.UUID) {
		rewardsSvc.Drop(userID)
		registrySvc.Drop(userID)
		quizSvc.Leave(userID)
		_ = wsHub.Publish(userID, ws.TypeSignedOut, nil)
		wsHub.DisconnectUser(userID)
	})

	wsHandler := server.NewWSHandler(wsHub, authSvc, func(ctx context.Context, userID uuid.UUID) (rewards.Profile, error) {
		l, err := rewardsSvc.Ledger(ctx, userID)
		if err != nil {
			return rewards.Profile{}, err
		}
		return l.Profile(), nil
	}, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Handlers{
		Auth:        auth.NewHTTPHandlers(authSvc, logger),
		AuthService: authSvc,
		Rewards:     rewards.NewHTTPHandler(rewardsSvc, logger),
		Registry:    registry.NewHTTPHandler(registrySvc, logger),
		Questions:   question.NewHTTPHandler(questionSvc, logger),
		Translation: translation.NewHTTPHandler(translationClient, functions, logger),
		Quiz:        quiz.NewHTTPHandler(quizSvc, logger),
		Leaderboard: leaderboard.NewHTTPHandler(leaderboardSvc, logger),
		WebSocket:   wsHandler.HandleWebSocket,
		Pingers: map[string]server.Pinger{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		persister:     persister,
		sweeper:       sweeper,
		backfill:      backfill,
		lbBroadcaster: lbBroadcaster,
	}, nil
}

// buildGenerators returns the generator served on /v1/functions and the one
// the translation client calls. They differ only when a remote endpoint
// owns generation.
func buildGenerators(ctx context.Context, cfg *config.App, questions *question.Service, translations *repository.TranslationRepository, logger zerolog.Logger) (translation.Generator, translation.Generator, error) {
	if cfg.AI.Provider == "remote" {
		if cfg.AI.FunctionsURL == "" {
			return nil, nil, errors.New("AI_FUNCTIONS_URL must be set for the remote provider")
		}
		remote := translation.NewRemoteGenerator(translation.RemoteConfig{
			BaseURL: cfg.AI.FunctionsURL,
			APIKey:  cfg.AI.FunctionsKey,
			Timeout: cfg.AI.Timeout,
		}, logger)
		return remote, remote, nil
	}

	provider, err := llm.New(ctx, cfg.AI, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("llm provider: %w", err)
	}
	functions := translation.NewFunctions(questions, translations, provider, logger)
	return functions, functions, nil
}

// Run serves HTTP and the background workers until ctx is cancelled or a
// termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.sweeper.Start(); err != nil {
		return fmt.Errorf("start session sweeper: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return ignoreCanceled(a.backfill.Run(gctx))
	})
	g.Go(func() error {
		if err := ignoreCanceled(a.lbBroadcaster.Run(gctx)); err != nil {
			a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutdown signal received")
		return a.shutdown()
	})

	err := g.Wait()
	a.logger.Info().Msg("shutdown complete")
	return err
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	a.sweeper.Stop()
	if err := a.persister.Flush(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("pending writes not flushed")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
