package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/terra-dev/terra/internal/auth"
	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/database"
	"github.com/terra-dev/terra/internal/logger"
	"github.com/terra-dev/terra/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := auth.NewRedisStore(ctx, cfg.Redis.Address, cfg.Redis.Password)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer store.Close()

	roster, err := auth.LoadRoster(cfg.Auth.RosterFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load roster")
	}
	log.Info().
		Int("admins", len(roster.Admins)).
		Int("leaders", len(roster.Leaders)).
		Str("file", cfg.Auth.RosterFile).
		Msg("Roster loaded")

	if cfg.Auth.TestKey != "" {
		log.Warn().Msg("TEST_KEY is set: bearer requests with it have server tier")
	}

	manager := auth.NewManager(
		store,
		auth.NewSigner(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL),
		roster,
		cfg.Auth.TestKey,
		cfg.Auth.OTACTTL,
		log,
	)

	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	defer queue.Close()

	srv, err := server.New(cfg, log, server.Dependencies{
		DB:    db,
		Auth:  manager,
		Queue: queue,
		Redis: store.Client(),
	}, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Msg("Starting Terra server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
