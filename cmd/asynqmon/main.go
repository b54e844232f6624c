package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/joho/godotenv"

	"github.com/terra-dev/terra/internal/config"
	"github.com/terra-dev/terra/internal/logger"
)

type monitorConfig struct {
	Redis   config.RedisConfig
	Logging config.LoggingConfig
	Port    string `env:"ASYNQMON_PORT" envDefault:"8090"`
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg monitorConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	h := asynqmon.New(asynqmon.Options{
		RootPath: "/asynqmon",
		RedisConnOpt: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
		},
	})
	defer h.Close()

	log.Info().Str("port", cfg.Port).Str("redis", cfg.Redis.Address).Msg("Starting Asynqmon")
	if err := http.ListenAndServe(":"+cfg.Port, h); err != nil {
		log.Fatal().Err(err).Msg("Asynqmon failed")
	}
}
