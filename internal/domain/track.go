package domain

import "context"

// Track is a search or playlist result: a display title and the source URL
// it can be fetched from.
type Track struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ReplyTarget is the handle a work item uses to answer the requester.
// Implementations are provided by the chat transport.
type ReplyTarget interface {
	// SendText delivers a short text notice.
	SendText(ctx context.Context, text string) error

	// SendAudio delivers a local audio file with the given display title.
	SendAudio(ctx context.Context, path string, title string) error
}
