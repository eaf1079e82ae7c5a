package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// subscription is a handler and the event types it asked for. An empty set
// means every type.
type subscription struct {
	handler EventHandler
	types   map[Type]struct{}
}

func (s subscription) wants(t Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Bus delivers lifecycle events to subscribed handlers synchronously, in
// subscription order. A failing or panicking handler does not keep the event
// from the remaining handlers.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewBus creates a Bus with no subscribers.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger.With("component", "event_bus")}
}

// Subscribe registers handler for the given event types, or for all of them
// when none are given.
func (b *Bus) Subscribe(handler EventHandler, types ...Type) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[Type]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

// EmitEvent implements EventEmitter. Every handler error is returned, joined.
func (b *Bus) EmitEvent(ctx context.Context, event *Event) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	logger := b.logger.With(
		"event_type", event.Type,
		"user_id", event.UserID,
		"item_id", event.ItemID)

	var errs []error
	delivered := 0
	for _, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		delivered++
		if err := b.deliver(ctx, sub.handler, event); err != nil {
			logger.Error("handler failed to process event", "error", err)
			errs = append(errs, err)
		}
	}

	logger.Debug("event dispatched", "handlers", delivered)
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, handler EventHandler, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.HandleEvent(ctx, event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
