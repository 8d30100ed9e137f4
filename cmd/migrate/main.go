// migrate applies the embedded schema: go run ./cmd/migrate -direction up.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/config"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/db/migrate"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/logger"
)

func main() {
	direction := flag.String("direction", migrate.DirectionUp, "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New("cognisecure-migrate", "info")
		log.Fatal().Err(err).Msg("config")
	}
	log := logger.New("cognisecure-migrate", cfg.LogLevel)
	if cfg.DatabaseURL == "" {
		log.Error().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Str("direction", *direction).Msg("migrate")
	}
	log.Info().Str("direction", *direction).Msg("migrations applied")
}
