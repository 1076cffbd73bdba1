package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

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

	if !cfg.QueueEnabled() {
		log.Fatal().Msg("KAFKA_BROKERS is required for the consumer")
	}

	// Setup loggers: zerolog for the process, slog for the shared
	// infrastructure (migrator, retrier)
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	// Initialize the write path
	txManager := postgresRepo.NewTxManager(pool)
	stateRepo := postgresRepo.NewAccountStateRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	retrier := postgresRepo.NewRetrier().WithMaxRetries(cfg.WriteMaxRetries)
	cache := redisRepo.NewCache(redisClient)

	writer := usecase.NewLedgerWriter(txManager, stateRepo, entryRepo, retrier, cache).WithMetrics(m)

	topics := queue.Topics{
		Entries:    cfg.KafkaEntriesTopic,
		Transfers:  cfg.KafkaTransfersTopic,
		DeadLetter: cfg.KafkaDeadLetterTopic,
	}

	// Dead letter producer
	producer, err := queue.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to kafka")
	}
	defer producer.Close()

	deadLetter := queue.NewDeadLetterProducer(producer, topics.DeadLetter)

	// Consumer group
	group, err := queue.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaConsumerGroup)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create consumer group")
	}
	defer group.Close()

	go func() {
		for err := range group.Errors() {
			log.Error().Err(err).Msg("consumer group error")
		}
	}()

	consumer := queue.NewConsumer(writer, deadLetter, topics, log.Logger, m)

	log.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("group", cfg.KafkaConsumerGroup).
		Msg("starting consumer")

	if err := queue.Run(ctx, group, consumer); err != nil {
		log.Fatal().Err(err).Msg("consumer failed")
	}

	log.Info().Msg("consumer stopped")
}
