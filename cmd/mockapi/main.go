package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/synthchat/internal/config"
	"github.com/tensorplex-labs/synthchat/internal/mockapi"
	"github.com/tensorplex-labs/synthchat/internal/utils/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	logger.Init(logger.WithEnvironment(cfg.Environment), logger.WithFile(cfg.LogFile))
	defer logger.Close()
	log.Info().Msg("Starting mock synthetic api...")

	server := mockapi.NewServer(&mockapi.ServerConfig{
		Host:          cfg.MockAPIHost,
		Port:          cfg.MockAPIPort,
		BodyLimit:     cfg.BodySizeLimit,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping server")
		if err := server.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("mock synthetic api stopped")
}
