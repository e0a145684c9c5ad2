package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iho/legendtrack/internal/adapter/clash"
	httpAdapter "github.com/iho/legendtrack/internal/adapter/http"
	"github.com/iho/legendtrack/internal/adapter/http/handler"
	"github.com/iho/legendtrack/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/legendtrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/legendtrack/internal/adapter/repository/redis"
	"github.com/iho/legendtrack/internal/infrastructure/config"
	"github.com/iho/legendtrack/internal/infrastructure/logger"
	"github.com/iho/legendtrack/internal/infrastructure/metrics"
	"github.com/iho/legendtrack/internal/infrastructure/postgres"
	"github.com/iho/legendtrack/internal/infrastructure/redis"
	"github.com/iho/legendtrack/internal/infrastructure/scheduler"
	"github.com/iho/legendtrack/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis. The leaderboard cache is optional: without Redis the
	// board is rebuilt on every request.
	var cache usecase.Cache
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Warn().Err(err).Msg("redis unavailable, leaderboard caching disabled")
	} else {
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		appLogger.Info().Msg("connected to redis")
	}

	// Initialize adapters
	retrier := postgresRepo.NewRetrier()
	playerRepo := postgresRepo.NewPlayerRepository(pool)
	eventRepo := postgresRepo.NewTrophyEventRepository(pool)
	statsRepo := postgresRepo.NewDailyStatsRepository(pool, retrier)
	idGen := postgresRepo.NewULIDGenerator()

	clashClient := clash.NewClient(clash.Config{
		BaseURL:    cfg.ClashBaseURL,
		APIToken:   cfg.ClashAPIToken,
		Timeout:    cfg.ClashTimeout,
		RequestsPS: cfg.ClashRPS,
		MaxRetries: cfg.ClashMaxRetries,
	}, appLogger)

	// Initialize use cases
	trackerUC := usecase.NewTrackerUseCase(playerRepo, clashClient, idGen)
	statsUC := usecase.NewStatsUseCase(playerRepo, eventRepo, statsRepo)
	leaderboardUC := usecase.NewLeaderboardUseCase(playerRepo, statsRepo, cache, appLogger)
	retentionUC := usecase.NewRetentionUseCase(eventRepo, statsRepo, cfg.RetentionHorizon(), appLogger)
	pollerUC := usecase.NewPollerUseCase(usecase.PollerConfig{
		Players:   playerRepo,
		Events:    eventRepo,
		Stats:     statsRepo,
		Source:    clashClient,
		Retention: retentionUC,
		Pacer:     usecase.FixedDelayPacer{Delay: cfg.PollBatchPause},
		Cache:     cache,
		IDGen:     idGen,
		BatchSize: cfg.PollBatchSize,
		Logger:    appLogger,
	})

	seasonOverride, err := cfg.SeasonResetOverrideTime()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid season reset override")
	}
	statsUC.SetSeasonResetOverride(seasonOverride)

	// Initialize handlers
	playerHandler := handler.NewPlayerHandler(trackerUC, statsUC)
	eventHandler := handler.NewEventHandler(statsUC)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardUC)
	pollHandler := handler.NewPollHandler(pollerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PlayerHandler:      playerHandler,
		EventHandler:       eventHandler,
		LeaderboardHandler: leaderboardHandler,
		PollHandler:        pollHandler,
		HealthHandler:      healthHandler,
		LoggingMiddleware:  middleware.NewLoggingMiddleware(appLogger),
	})

	// Start the poll scheduler
	pollScheduler, err := scheduler.New(scheduler.Config{
		Poller:       pollerUC,
		Interval:     cfg.PollInterval,
		CycleTimeout: cfg.PollCycleTimeout,
		Metrics:      metrics.New(),
		Logger:       appLogger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create poll scheduler")
	}
	pollScheduler.Start()
	defer pollScheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
