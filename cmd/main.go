package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("BBX_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	config.ApplyEnv(os.Getenv)

	db, err := shared.OpenMigrated(config.Database)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runner, err := NewRunner(RunnerOpts{
		Config: config,
		DB:     db,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}

	if err := runner.Start(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	app := &cli.Command{
		Name:     "bbx",
		Usage:    "Read and write the bulletin board from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrCancelled), errors.Is(err, context.Canceled):
			logger.Warn("cancelled")
			os.Exit(130)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
