package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/events"
)

// ErrRunnerStopped is returned by Submit after Stop has been called.
var ErrRunnerStopped = errors.New("task runner is stopped")

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// SearchLimit is the number of results requested from the searcher;
	// the first one is fetched
	SearchLimit int

	// ExpandTimeout bounds playlist expansion during Submit
	ExpandTimeout time.Duration

	// Reaper controls idle session reclamation
	Reaper ReaperConfig

	// Now is the clock used for activity tracking and sweeps. Defaults to
	// time.Now.
	Now func() time.Time
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		SearchLimit:   1,
		ExpandTimeout: DefaultExpandTimeout,
		Reaper:        DefaultReaperConfig(),
		Now:           time.Now,
	}
}

// Dependencies groups the collaborators a Runner drives.
type Dependencies struct {
	Searcher Searcher
	Expander PlaylistExpander
	Fetcher  Fetcher
	Sandbox  Sandbox
	Emitter  events.EventEmitter
}

// Runner owns the registry and every background task: per-user workers and
// the idle reaper. Workers run on goroutines derived from the runner context,
// so Stop cancels them between items and waits for them to exit.
type Runner struct {
	registry   *Registry
	controller *Controller
	worker     *Worker
	reaper     *Reaper
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewRunner wires a Registry, Controller, Worker and Reaper together.
func NewRunner(deps Dependencies, config RunnerConfig, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	registry := NewRegistry(config.Now)
	r := &Runner{
		registry: registry,
		logger:   logger.With("component", "task_runner"),
	}
	r.ctx, r.cancelFunc = context.WithCancel(context.Background())

	var err error
	r.worker, err = NewWorker(registry, deps.Sandbox, deps.Searcher, deps.Fetcher,
		deps.Emitter, config.SearchLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	r.controller, err = NewController(registry, deps.Expander, deps.Emitter, r.spawn,
		config.ExpandTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	r.reaper, err = NewReaper(registry, deps.Sandbox, deps.Emitter, config.Reaper,
		config.Now, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reaper: %w", err)
	}

	return r, nil
}

// Registry exposes the session registry for read-only views.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Reaper returns the runner's idle reaper.
func (r *Runner) Reaper() *Reaper {
	return r.reaper
}

// Submit hands an inbound request to the controller.
func (r *Runner) Submit(ctx context.Context, req Request) (SubmitResult, error) {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return SubmitResult{}, ErrRunnerStopped
	}

	return r.controller.Submit(ctx, req)
}

// Start begins the periodic idle sweep.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrRunnerStopped
	}
	r.reaper.Start(r.ctx)
	r.logger.Info("task runner started")
	return nil
}

// Stop gracefully shuts down the task runner. Items still queued when a
// worker notices the cancellation are left in place and dropped with the
// process.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.reaper.Stop()
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

// Wait blocks until every worker started so far has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// spawn starts the worker goroutine for a user whose slot the registry has
// just granted.
func (r *Runner) spawn(user domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		r.registry.SetActiveWorker(user, false)
		return ErrRunnerStopped
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.worker.Run(r.ctx, user)
	}()

	r.logger.Debug("spawned worker", "user_id", user)
	return nil
}
