package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/app"
	"github.com/gokatarajesh/patente-quiz/internal/config"
	"github.com/gokatarajesh/patente-quiz/internal/logging"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			boot.Warn().Err(err).Msg("could not load .env file")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)

	appCtx := context.Background()
	instance, err := app.New(appCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build app")
	}

	if err := instance.Run(appCtx); err != nil {
		logger.Fatal().Err(err).Msg("runtime error")
	}
}
