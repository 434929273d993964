package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/api"
	"github.com/icebreak-chat/icebreak-go/internal/config"
	"github.com/icebreak-chat/icebreak-go/internal/session"
	"github.com/icebreak-chat/icebreak-go/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, err := fileLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client := api.New(cfg.BaseURL(),
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(logger.Named("api")))

	store := session.NewStore(cfg.StateDir)
	saved, err := store.Load()
	if err != nil {
		logger.Warn("stored session unreadable, starting fresh", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := ui.NewApp(ctx, cfg, client, store, logger.Named("ui"), saved)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("ui exited", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fileLogger(cfg config.Config) (*zap.Logger, error) {
	path := cfg.LogFile
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
