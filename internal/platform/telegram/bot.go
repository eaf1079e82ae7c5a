// Package telegram connects the task runner to the Telegram Bot API. It long
// polls for updates, answers the built-in commands itself and hands every
// other text message to the runner, bound to a rate-limited reply target.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phrazzld/trackbot/internal/config"
	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/redact"
	"github.com/phrazzld/trackbot/internal/task"
	"golang.org/x/time/rate"
)

// botAPI is the subset of *tgbotapi.BotAPI used here.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Submitter accepts inbound requests. *task.Runner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req task.Request) (task.SubmitResult, error)
}

// Bot receives updates and dispatches them.
type Bot struct {
	api         botAPI
	submitter   Submitter
	limiter     *rate.Limiter
	pollTimeout int
	logger      *slog.Logger
	dispatcher  *dispatcher
}

// New connects to the Bot API with the configured token and endpoint.
func New(cfg config.BotConfig, submitter Submitter, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, cfg.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bot api: %w", redact.Wrap(err))
	}
	logger.Info("authorized on bot account", "username", api.Self.UserName)

	return newBot(api, cfg, submitter, logger)
}

func newBot(api botAPI, cfg config.BotConfig, submitter Submitter, logger *slog.Logger) (*Bot, error) {
	if submitter == nil {
		return nil, errors.New("submitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	b := &Bot{
		api:         api,
		submitter:   submitter,
		limiter:     rate.NewLimiter(rate.Limit(cfg.SendRatePerSecond), cfg.SendBurst),
		pollTimeout: cfg.PollTimeoutSeconds,
		logger:      logger.With("component", "telegram"),
	}
	b.dispatcher = newDispatcher(b.handleUpdate)
	return b, nil
}

// Run polls for updates until ctx is cancelled or the update channel closes.
// Each user's messages reach the runner in the order they were sent, while a
// slow request from one user never holds up another's. Run returns after
// every update already received has been handled.
func (b *Bot) Run(ctx context.Context) error {
	defer b.dispatcher.wait()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("polling for updates", "timeout_seconds", b.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.route(ctx, update)
		}
	}
}

// route sends user messages through the per-user dispatcher. Anything else
// carries nothing to act on.
func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	b.dispatcher.dispatch(ctx, domain.UserID(msg.From.ID), update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	user := domain.UserID(msg.From.ID)
	reply := b.replyTo(msg)
	logger := b.logger.With("user_id", user, "update_id", update.UpdateID)

	if msg.IsCommand() {
		b.handleCommand(ctx, logger, msg.Command(), reply)
		return
	}
	if msg.Text == "" {
		return
	}

	_, err := b.submitter.Submit(ctx, task.Request{UserID: user, Text: msg.Text, Reply: reply})
	switch {
	case err == nil:
	case errors.Is(err, task.ErrRunnerStopped):
		b.send(ctx, logger, reply, task.NoticeUnavailable)
	case errors.Is(err, domain.ErrEmptyPayload):
	default:
		logger.Error("failed to submit request", "error", redact.Error(err))
		b.send(ctx, logger, reply, task.NoticeFailed)
	}
}

func (b *Bot) handleCommand(ctx context.Context, logger *slog.Logger, command string, reply *Reply) {
	switch command {
	case "start":
		b.send(ctx, logger, reply, task.NoticeGreeting)
	case "help":
		b.send(ctx, logger, reply, task.NoticeHelp)
	default:
		logger.Debug("unknown command", "command", command)
		b.send(ctx, logger, reply, task.NoticeUnknownCommand)
	}
}

func (b *Bot) send(ctx context.Context, logger *slog.Logger, reply *Reply, text string) {
	if err := reply.SendText(ctx, text); err != nil {
		logger.Warn("failed to send message", "error", redact.Error(err))
	}
}

func (b *Bot) replyTo(msg *tgbotapi.Message) *Reply {
	return &Reply{
		api:       b.api,
		limiter:   b.limiter,
		chatID:    msg.Chat.ID,
		messageID: msg.MessageID,
	}
}
