// Command server runs the robustness HTTP API.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/rapidlabs/rapid/internal/config"
	"github.com/rapidlabs/rapid/internal/robustnessapi"
	"github.com/rapidlabs/rapid/internal/utils/logger"
)

func main() {
	// logger.Init already loads .env before the config parse below.
	logger.Init()
	log.Info().Msg("Starting robustness API server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := robustnessapi.NewServer(&cfg.ServerEnvConfig)
	if err := s.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}
