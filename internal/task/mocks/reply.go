package mocks

import (
	"context"
	"sync"
)

// Message kinds recorded by Reply.
const (
	KindText  = "text"
	KindAudio = "audio"
)

// Message is one outbound message recorded by Reply.
type Message struct {
	Kind string
	// Text holds the notice for text messages and the title for audio
	Text string
	Path string
}

// Reply is a thread-safe recording implementation of domain.ReplyTarget.
type Reply struct {
	SendTextFunc  func(ctx context.Context, text string) error
	SendAudioFunc func(ctx context.Context, path, title string) error

	mu       sync.Mutex
	messages []Message
}

// SendText implements the ReplyTarget interface for testing.
func (r *Reply) SendText(ctx context.Context, text string) error {
	r.record(Message{Kind: KindText, Text: text})
	if r.SendTextFunc != nil {
		return r.SendTextFunc(ctx, text)
	}
	return nil
}

// SendAudio implements the ReplyTarget interface for testing.
func (r *Reply) SendAudio(ctx context.Context, path, title string) error {
	r.record(Message{Kind: KindAudio, Text: title, Path: path})
	if r.SendAudioFunc != nil {
		return r.SendAudioFunc(ctx, path, title)
	}
	return nil
}

func (r *Reply) record(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

// Messages returns a copy of everything sent so far.
func (r *Reply) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Audio returns only the audio deliveries.
func (r *Reply) Audio() []Message {
	var audio []Message
	for _, m := range r.Messages() {
		if m.Kind == KindAudio {
			audio = append(audio, m)
		}
	}
	return audio
}

// Texts returns only the text notices.
func (r *Reply) Texts() []string {
	var texts []string
	for _, m := range r.Messages() {
		if m.Kind == KindText {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
