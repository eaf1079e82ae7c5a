package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/trackbot/internal/config"
	"github.com/phrazzld/trackbot/internal/platform/logger"
	"github.com/phrazzld/trackbot/internal/platform/telegram"
	"github.com/spf13/cobra"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the admin HTTP server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, *configFile)
		},
	}
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"base_dir", cfg.Storage.BaseDir,
		"idle_timeout", cfg.Session.IdleTimeout().String(),
		"cookies_present", cfg.Fetcher.Cookies != "")
	if cfg.Fetcher.Cookies == "" {
		log.Warn("no cookie material configured; searches and downloads will fail")
	}

	app, err := newApplication(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	bot, err := telegram.New(cfg.Bot, app.runner, log)
	if err != nil {
		return err
	}

	if err := app.run(ctx, bot); err != nil {
		slog.Error("application stopped with error", "error", err)
		return err
	}
	return nil
}
