package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/redact"
)

// DefaultExpandTimeout bounds playlist expansion inside Submit.
const DefaultExpandTimeout = 60 * time.Second

// Request is one inbound user message.
type Request struct {
	UserID domain.UserID
	Text   string
	Reply  domain.ReplyTarget
}

// SubmitResult describes what Submit did with a request.
type SubmitResult struct {
	// Queued is the number of work items added to the user's queue
	Queued int
	// Spawned is true when this request started the user's worker
	Spawned bool
}

// SpawnFunc starts a worker for the user. It is called only after the
// registry has granted the worker slot.
type SpawnFunc func(user domain.UserID) error

// Controller turns inbound messages into queued work items and decides whether
// a worker must be started.
type Controller struct {
	registry      *Registry
	expander      PlaylistExpander
	emitter       events.EventEmitter
	spawn         SpawnFunc
	expandTimeout time.Duration
	logger        *slog.Logger
}

// NewController creates a Controller. A nil emitter discards events and a
// non-positive expandTimeout falls back to DefaultExpandTimeout.
func NewController(
	registry *Registry,
	expander PlaylistExpander,
	emitter events.EventEmitter,
	spawn SpawnFunc,
	expandTimeout time.Duration,
	logger *slog.Logger,
) (*Controller, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if expander == nil {
		return nil, ErrNilExpander
	}
	if spawn == nil {
		return nil, fmt.Errorf("spawn function cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if expandTimeout <= 0 {
		expandTimeout = DefaultExpandTimeout
	}

	return &Controller{
		registry:      registry,
		expander:      expander,
		emitter:       emitter,
		spawn:         spawn,
		expandTimeout: expandTimeout,
		logger:        logger.With("component", "controller"),
	}, nil
}

// Submit records activity, builds work items from the request and enqueues
// them. When a worker is already running the user is told to wait; otherwise
// a worker is spawned. Submit does not wait for the work to finish.
func (c *Controller) Submit(ctx context.Context, req Request) (SubmitResult, error) {
	if err := req.UserID.Validate(); err != nil {
		return SubmitResult{}, err
	}
	if req.Reply == nil {
		return SubmitResult{}, domain.ErrNilReplyTarget
	}

	logger := c.logger.With("user_id", req.UserID)
	c.registry.Touch(req.UserID)

	items, err := c.buildItems(ctx, req)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(items) == 0 {
		return SubmitResult{}, nil
	}

	spawn := c.registry.Enqueue(req.UserID, items...)
	for _, item := range items {
		emit(ctx, c.emitter, logger, events.ItemQueued, req.UserID, item.ID(),
			map[string]string{"payload": item.Payload()})
	}
	logger.Info("items queued", "count", len(items), "worker_running", !spawn)

	if !spawn {
		if err := req.Reply.SendText(ctx, NoticePleaseWait); err != nil {
			logger.Warn("failed to send wait notice", "error", redact.Error(err))
		}
		return SubmitResult{Queued: len(items)}, nil
	}

	if err := c.spawn(req.UserID); err != nil {
		return SubmitResult{Queued: len(items)}, fmt.Errorf("failed to start worker: %w", err)
	}
	return SubmitResult{Queued: len(items), Spawned: true}, nil
}

// buildItems expands playlist URLs into one item per entry and wraps anything
// else as a single item. An empty or failed expansion is reported to the user
// and yields no items.
func (c *Controller) buildItems(ctx context.Context, req Request) ([]domain.WorkItem, error) {
	if !domain.IsPlaylistURL(req.Text) {
		item, err := domain.NewWorkItem(req.UserID, req.Text, req.Reply)
		if err != nil {
			return nil, err
		}
		return []domain.WorkItem{item}, nil
	}

	expandCtx, cancel := context.WithTimeout(ctx, c.expandTimeout)
	defer cancel()

	tracks, err := c.expander.ExpandPlaylist(expandCtx, req.Text)
	if err != nil {
		c.logger.Error("failed to expand playlist",
			"user_id", req.UserID,
			"error", redact.Error(err))
		c.notify(ctx, req, NoticeFailed)
		emit(ctx, c.emitter, c.logger, events.ItemFailed, req.UserID, uuid.Nil,
			map[string]string{"payload": req.Text})
		return nil, nil
	}

	items := make([]domain.WorkItem, 0, len(tracks))
	for _, track := range tracks {
		item, err := domain.NewWorkItem(req.UserID, track.URL, req.Reply)
		if err != nil {
			c.logger.Warn("skipping playlist entry", "url", track.URL, "error", err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		c.logger.Info("playlist expanded to nothing", "user_id", req.UserID)
		c.notify(ctx, req, NoticeEmptyPlaylist)
		emit(ctx, c.emitter, c.logger, events.ItemNoResults, req.UserID, uuid.Nil,
			map[string]string{"payload": req.Text})
	}
	return items, nil
}

func (c *Controller) notify(ctx context.Context, req Request, text string) {
	if err := req.Reply.SendText(ctx, text); err != nil {
		c.logger.Warn("failed to send notice", "user_id", req.UserID, "error", redact.Error(err))
	}
}
