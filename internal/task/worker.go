package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/redact"
)

// Common errors
var (
	ErrNilRegistry = errors.New("registry cannot be nil")
	ErrNilSandbox  = errors.New("sandbox cannot be nil")
	ErrNilSearcher = errors.New("searcher cannot be nil")
	ErrNilFetcher  = errors.New("fetcher cannot be nil")
	ErrNilExpander = errors.New("playlist expander cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
)

// Worker drains one user's queue, one item at a time, then exits.
// A single Worker value is shared by all users; each Run call is one
// logical per-user worker.
type Worker struct {
	registry    *Registry
	sandbox     Sandbox
	searcher    Searcher
	fetcher     Fetcher
	emitter     events.EventEmitter
	logger      *slog.Logger
	searchLimit int
}

// NewWorker creates a Worker. A nil emitter discards events; a search limit
// below one is raised to one.
func NewWorker(
	registry *Registry,
	sandbox Sandbox,
	searcher Searcher,
	fetcher Fetcher,
	emitter events.EventEmitter,
	searchLimit int,
	logger *slog.Logger,
) (*Worker, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if sandbox == nil {
		return nil, ErrNilSandbox
	}
	if searcher == nil {
		return nil, ErrNilSearcher
	}
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if searchLimit < 1 {
		searchLimit = 1
	}

	return &Worker{
		registry:    registry,
		sandbox:     sandbox,
		searcher:    searcher,
		fetcher:     fetcher,
		emitter:     emitter,
		logger:      logger.With("component", "worker"),
		searchLimit: searchLimit,
	}, nil
}

// Run drains the user's queue until it is observed empty. The caller must have
// claimed the worker slot through Registry.Enqueue; Run releases it on exit.
// Cancelling ctx stops the loop before the next item and leaves the rest queued.
func (w *Worker) Run(ctx context.Context, user domain.UserID) {
	logger := w.logger.With("user_id", user)
	logger.Debug("worker started")

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			remaining := w.registry.Release(user)
			logger.Info("worker stopped before draining queue",
				"processed", processed,
				"remaining", remaining)
			return
		}

		item, ok := w.registry.Next(user)
		if !ok {
			logger.Debug("worker idle, queue drained", "processed", processed)
			return
		}

		// every item after the first is preceded by a next-track notice
		if processed > 0 {
			w.notify(ctx, item, NoticeNextTrack)
		}

		outcome := w.Process(ctx, item)
		processed++
		if outcome.Kind == OutcomeFailed && ctx.Err() != nil {
			logger.Info("item interrupted by shutdown", "item_id", item.ID())
			continue
		}
		w.report(ctx, item, outcome)
	}
}

// Process resolves, fetches and delivers a single item. It never panics on
// collaborator errors; every failure is folded into the returned Outcome.
func (w *Worker) Process(ctx context.Context, item domain.WorkItem) Outcome {
	w.notify(ctx, item, NoticeSearching)

	url, fallbackTitle, outcome, ok := w.resolve(ctx, item)
	if !ok {
		return outcome
	}

	dir, err := w.sandbox.Ensure(item.UserID())
	if err != nil {
		return failed(fmt.Errorf("%w: %w", domain.ErrFetchFailed, err))
	}

	path, title, err := w.fetcher.Fetch(ctx, url, dir)
	if err != nil {
		return failed(fmt.Errorf("%w: %w", domain.ErrFetchFailed, err))
	}
	if title == "" {
		title = fallbackTitle
	}

	if err := item.Reply().SendAudio(ctx, path, title); err != nil {
		return failed(fmt.Errorf("%w: deliver audio: %w", domain.ErrNotifyFailed, err))
	}

	return delivered(path, title)
}

// resolve turns the payload into a fetch target. Source URLs are used as-is
// with an unknown title; anything else goes through search and the first
// result wins.
func (w *Worker) resolve(ctx context.Context, item domain.WorkItem) (string, string, Outcome, bool) {
	if item.IsSourceURL() {
		return item.Payload(), "", Outcome{}, true
	}

	results, err := w.searcher.Search(ctx, item.Payload(), w.searchLimit)
	if err != nil {
		return "", "", failed(fmt.Errorf("search %q: %w", item.Payload(), err)), false
	}
	if len(results) == 0 {
		return "", "", noResults(domain.ErrNoResults), false
	}

	return results[0].URL, results[0].Title, Outcome{}, true
}

// report tells the user about non-delivered outcomes, logs, and emits the
// lifecycle event.
func (w *Worker) report(ctx context.Context, item domain.WorkItem, outcome Outcome) {
	logger := w.logger.With(
		"user_id", item.UserID(),
		"item_id", item.ID(),
		"outcome", outcome.Kind.String(),
	)

	var eventType events.Type
	var payload interface{}

	switch outcome.Kind {
	case OutcomeDelivered:
		logger.Info("track delivered", "title", outcome.Title)
		eventType = events.ItemDelivered
		payload = map[string]string{"title": outcome.Title}
	case OutcomeNoResults:
		logger.Info("no results for query")
		w.notify(ctx, item, NoticeNoResults)
		eventType = events.ItemNoResults
	default:
		logger.Error("failed to process item", "error", redact.Error(outcome.Err))
		w.notify(ctx, item, NoticeFailed)
		eventType = events.ItemFailed
	}

	emit(ctx, w.emitter, logger, eventType, item.UserID(), item.ID(), payload)
}

// notify sends a best-effort notice; failures are logged as warnings only.
func (w *Worker) notify(ctx context.Context, item domain.WorkItem, text string) {
	if err := item.Reply().SendText(ctx, text); err != nil {
		w.logger.Warn("failed to send notice",
			"user_id", item.UserID(),
			"item_id", item.ID(),
			"error", redact.Error(err))
	}
}

func emit(
	ctx context.Context,
	emitter events.EventEmitter,
	logger *slog.Logger,
	eventType events.Type,
	user domain.UserID,
	itemID uuid.UUID,
	payload interface{},
) {
	event, err := events.NewEvent(eventType, user, itemID, payload)
	if err != nil {
		logger.Error("failed to build event", "event_type", eventType, "error", err)
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		logger.Warn("event handler failed", "event_type", eventType, "error", err)
	}
}
