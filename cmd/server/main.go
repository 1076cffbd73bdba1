package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/jefwallets/ledger/internal/adapter/http"
	"github.com/jefwallets/ledger/internal/adapter/http/handler"
	"github.com/jefwallets/ledger/internal/adapter/queue"
	postgresRepo "github.com/jefwallets/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/jefwallets/ledger/internal/adapter/repository/redis"
	"github.com/jefwallets/ledger/internal/infrastructure/config"
	"github.com/jefwallets/ledger/internal/infrastructure/logger"
	"github.com/jefwallets/ledger/internal/infrastructure/logging"
	"github.com/jefwallets/ledger/internal/infrastructure/metrics"
	"github.com/jefwallets/ledger/internal/infrastructure/postgres"
	"github.com/jefwallets/ledger/internal/infrastructure/redis"
	"github.com/jefwallets/ledger/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup loggers: zerolog for the process, slog for the shared
	// infrastructure (migrator, retrier)
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	stateRepo := postgresRepo.NewAccountStateRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	retrier := postgresRepo.NewRetrier().WithMaxRetries(cfg.WriteMaxRetries)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	writer := usecase.NewLedgerWriter(txManager, stateRepo, entryRepo, retrier, cache).WithMetrics(m)
	reader := usecase.NewLedgerReader(stateRepo, entryRepo, cache).WithMetrics(m)

	// Optional queue write path
	var publisher usecase.Publisher
	if cfg.QueueEnabled() {
		producer, err := queue.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to kafka")
		}
		defer producer.Close()

		kafkaPublisher := queue.NewKafkaPublisher(producer, queue.Topics{
			Entries:    cfg.KafkaEntriesTopic,
			Transfers:  cfg.KafkaTransfersTopic,
			DeadLetter: cfg.KafkaDeadLetterTopic,
		})
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("connected to kafka")
	}

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(writer, publisher, postgresRepo.NewULIDGenerator())
	accountHandler := handler.NewAccountHandler(reader)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    ledgerHandler,
		AccountHandler:   accountHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})

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
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
