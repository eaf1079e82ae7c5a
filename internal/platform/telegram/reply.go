package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Reply sends messages to one chat as replies to one inbound message.
// It implements domain.ReplyTarget. Sends share the bot's rate limiter.
type Reply struct {
	api       botAPI
	limiter   *rate.Limiter
	chatID    int64
	messageID int
}

// SendText sends a plain text reply.
func (r *Reply) SendText(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ReplyToMessageID = r.messageID
	return r.send(ctx, msg)
}

// SendAudio uploads the file at path as an audio message with the given title.
func (r *Reply) SendAudio(ctx context.Context, path, title string) error {
	audio := tgbotapi.NewAudio(r.chatID, tgbotapi.FilePath(path))
	audio.Title = title
	audio.ReplyToMessageID = r.messageID
	return r.send(ctx, audio)
}

func (r *Reply) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if _, err := r.api.Send(c); err != nil {
		return fmt.Errorf("send to chat %d: %w", r.chatID, err)
	}
	return nil
}
