package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/synthchat/internal/config"
	"github.com/tensorplex-labs/synthchat/internal/notice"
	"github.com/tensorplex-labs/synthchat/internal/session"
	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
	"github.com/tensorplex-labs/synthchat/internal/tui"
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

	// the terminal belongs to the UI, so logs go to a file
	logger.Init(
		logger.WithEnvironment(cfg.Environment),
		logger.WithFile(cfg.LogFile),
		logger.WithDefaultFile("synthchat.log"),
	)
	defer logger.Close()

	api, err := syntheticapi.NewSyntheticAPI(&cfg.SyntheticAPIEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init synthetic api client")
	}

	format, err := syntheticapi.ParseOutputFormat(cfg.DefaultOutputFormat)
	if err != nil {
		log.Warn().Err(err).Msg("unknown default output format, using csv")
		format = syntheticapi.FormatCSV
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := tui.NewEvents()
	n := notice.New(cfg.NoticeTTL, events.NoticeListener)
	defer n.Stop()
	store := session.NewStore(api, session.WithListener(events.StoreListener))

	m := tui.NewModel(ctx, store, n, events, tui.Config{
		Models: cfg.ModelChoices(),
		Format: format,
	})

	log.Info().Str("url", cfg.SyntheticAPIUrl).Msg("starting chat")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("chat exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
	log.Info().Msg("chat stopped")
}
