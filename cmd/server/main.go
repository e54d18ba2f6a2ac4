package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coralpress/notifications/internal/application"
	"github.com/coralpress/notifications/internal/config"
	"github.com/coralpress/notifications/internal/domain"
	"github.com/coralpress/notifications/internal/infrastructure/postgres"
	"github.com/coralpress/notifications/internal/infrastructure/sqlite"
	kafkaconsumer "github.com/coralpress/notifications/internal/kafka"
	transporthttp "github.com/coralpress/notifications/internal/transport/http"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	_ = godotenv.Load() // optional .env for local development

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Server.Env).Str("port", cfg.Server.Port).Msg("starting panel-notifications")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Store ─────────────────────────────────────────────────────────────────
	var (
		notifications domain.NotificationRepository
		users         domain.UserRepository
	)

	switch cfg.Store.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("postgres schema setup failed")
		}
		notifications = postgres.New(pool)
		users = postgres.NewUserRepository(pool)
		log.Info().Msg("postgres connected")

	case "sqlite":
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLite.Path).Msg("failed to open sqlite store")
		}
		defer store.Close()

		notifications = store
		users = store.Users()
		log.Info().Str("path", cfg.SQLite.Path).Msg("sqlite store opened")

	default:
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("unknown store driver")
	}

	// ── Application Service ───────────────────────────────────────────────────
	svc := application.NewService(notifications, users)

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(svc, cfg.Store.Driver)
	router := transporthttp.NewRouter(handler, cfg.Identity.Secret)

	// ── Kafka Consumer (optional) ─────────────────────────────────────────────
	if cfg.Kafka.Enabled {
		consumer, err := kafkaconsumer.New(
			cfg.Kafka.Brokers,
			cfg.Kafka.ConsumerGroupID,
			cfg.Kafka.Topics,
			svc,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create kafka consumer")
		}
		go consumer.Start(ctx)
		log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka consumer started")
	}

	// ── Start HTTP Server ─────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("panel-notifications stopped")
}
