package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/trackbot/internal/api"
	"github.com/phrazzld/trackbot/internal/config"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/platform/ytdlp"
	"github.com/phrazzld/trackbot/internal/sandbox"
	"github.com/phrazzld/trackbot/internal/task"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// botRunner is the chat transport loop. *telegram.Bot satisfies it.
type botRunner interface {
	Run(ctx context.Context) error
}

// application holds the long-lived components of a serve process.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	sandbox *sandbox.Sandbox
	counter *events.Counter
	runner  *task.Runner
}

// newApplication wires storage, the yt-dlp client, event handlers and the
// task runner. Nothing is started yet.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	return newApplicationWithRunner(cfg, nil, logger)
}

func newApplicationWithRunner(cfg *config.Config, cmdRunner ytdlp.CommandRunner, logger *slog.Logger) (*application, error) {
	sb, err := sandbox.New(cfg.Storage.BaseDir)
	if err != nil {
		return nil, err
	}
	if err := sb.Init(); err != nil {
		return nil, err
	}

	client, err := ytdlp.NewClient(cfg.Fetcher, cmdRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create yt-dlp client: %w", err)
	}

	counter := events.NewCounter()
	emitter := events.NewBus(logger)
	emitter.Subscribe(counter)

	runnerConfig := task.DefaultRunnerConfig()
	runnerConfig.SearchLimit = cfg.Fetcher.SearchLimit
	runnerConfig.Reaper = task.ReaperConfig{
		IdleTimeout:   cfg.Session.IdleTimeout(),
		SweepInterval: cfg.Session.SweepInterval(),
	}

	runner, err := task.NewRunner(task.Dependencies{
		Searcher: client,
		Expander: client,
		Fetcher:  client,
		Sandbox:  sb,
		Emitter:  emitter,
	}, runnerConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}

	return &application{
		config:  cfg,
		logger:  logger,
		sandbox: sb,
		counter: counter,
		runner:  runner,
	}, nil
}

// run starts the task runner, the chat bot and the admin HTTP server, and
// blocks until ctx is cancelled or one of them fails. Everything is shut down
// before it returns.
func (app *application) run(ctx context.Context, bot botRunner) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           api.NewRouter(app.runner.Registry(), app.counter, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := bot.Run(gctx)
		if err == nil && gctx.Err() == nil {
			err = errors.New("bot stopped unexpectedly")
		}
		return err
	})

	g.Go(func() error {
		app.logger.Info("starting admin server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		app.runner.Stop()
		if err != nil {
			return fmt.Errorf("admin server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.logger.Info("shutdown completed")
	return err
}
