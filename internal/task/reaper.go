package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/redact"
)

// ReaperConfig holds the timing of the idle reaper.
type ReaperConfig struct {
	// IdleTimeout is how long a user may stay silent before the session and
	// its sandbox are reclaimed
	IdleTimeout time.Duration

	// SweepInterval defines how often sessions are checked
	SweepInterval time.Duration
}

// DefaultReaperConfig returns the ten minute timeout swept once a minute.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		IdleTimeout:   10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Reaper periodically removes sessions whose last inbound request is older
// than the idle timeout, along with their sandbox directories. Expiry is
// based on elapsed time only; a worker still draining a long queue does not
// keep its session alive.
type Reaper struct {
	registry *Registry
	sandbox  Sandbox
	emitter  events.EventEmitter
	config   ReaperConfig
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReaper creates a stopped Reaper. Zero config values take their defaults.
func NewReaper(
	registry *Registry,
	sandbox Sandbox,
	emitter events.EventEmitter,
	config ReaperConfig,
	now func() time.Time,
	logger *slog.Logger,
) (*Reaper, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if sandbox == nil {
		return nil, ErrNilSandbox
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if now == nil {
		now = time.Now
	}

	defaults := DefaultReaperConfig()
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaults.SweepInterval
	}

	return &Reaper{
		registry: registry,
		sandbox:  sandbox,
		emitter:  emitter,
		config:   config,
		now:      now,
		logger:   logger.With("component", "reaper"),
	}, nil
}

// Start launches the sweep loop. It returns immediately; calling Start on a
// running Reaper is a no-op.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)

	r.logger.Info("reaper started",
		"idle_timeout", r.config.IdleTimeout.String(),
		"sweep_interval", r.config.SweepInterval.String())
}

// Stop cancels the sweep loop and waits for it to exit.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Info("reaper stopped")
}

func (r *Reaper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx, r.now())
		}
	}
}

// Sweep reclaims every session idle for longer than the timeout at now and
// returns how many were reclaimed.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) int {
	expired := r.registry.Expired(now, r.config.IdleTimeout)
	if len(expired) == 0 {
		return 0
	}

	reaped := 0
	for _, user := range expired {
		result := r.registry.RemoveIfExpired(user, now, r.config.IdleTimeout)
		if !result.Found {
			continue
		}

		logger := r.logger.With("user_id", user)
		if err := r.sandbox.Remove(user); err != nil {
			logger.Error("failed to remove sandbox", "error", redact.Error(err))
		}

		logger.Info("session reaped",
			"dropped_items", result.DroppedItems,
			"worker_active", result.WorkerActive)
		emit(ctx, r.emitter, logger, events.SessionReaped, user, uuid.Nil,
			map[string]int{"dropped_items": result.DroppedItems})
		reaped++
	}

	return reaped
}
