package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/trackbot/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingHandler struct{}

func (panickingHandler) HandleEvent(context.Context, *Event) error { panic("boom") }

func TestBus(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no subscribers", func(t *testing.T) {
		bus := NewBus(discard)
		event, err := NewEvent(ItemQueued, 1, uuid.New(), nil)
		require.NoError(t, err)

		assert.NoError(t, bus.EmitEvent(context.Background(), event))
	})

	t.Run("every subscriber receives the event", func(t *testing.T) {
		bus := NewBus(discard)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		bus.Subscribe(handler1)
		bus.Subscribe(handler2)

		event, err := NewEvent(ItemDelivered, 1, uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, bus.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("subscription by type", func(t *testing.T) {
		bus := NewBus(discard)

		reaps := &MockEventHandler{}
		items := &MockEventHandler{}
		bus.Subscribe(reaps, SessionReaped)
		bus.Subscribe(items, ItemQueued, ItemDelivered)

		for _, eventType := range []Type{ItemQueued, ItemDelivered, SessionReaped, ItemFailed} {
			event, err := NewEvent(eventType, 1, uuid.Nil, nil)
			require.NoError(t, err)
			require.NoError(t, bus.EmitEvent(context.Background(), event))
		}

		assert.Equal(t, 1, reaps.HandledCount)
		assert.Equal(t, SessionReaped, reaps.LastEvent.Type)
		assert.Equal(t, 2, items.HandledCount)
	})

	t.Run("failures are joined and do not stop delivery", func(t *testing.T) {
		bus := NewBus(discard)

		errFirst := errors.New("first handler error")
		errSecond := errors.New("second handler error")
		bus.Subscribe(&MockEventHandler{HandlerError: errFirst})
		bus.Subscribe(panickingHandler{})
		bus.Subscribe(&MockEventHandler{HandlerError: errSecond})
		last := &MockEventHandler{}
		bus.Subscribe(last)

		event, err := NewEvent(ItemFailed, 1, uuid.New(), nil)
		require.NoError(t, err)

		err = bus.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, errFirst)
		assert.ErrorIs(t, err, errSecond)
		assert.ErrorContains(t, err, "handler panicked: boom")
		assert.Equal(t, 1, last.HandledCount)
	})

	t.Run("dispatch is logged with user and item", func(t *testing.T) {
		log, logBuf := logger.GetTestLogger(t)
		bus := NewBus(log)
		bus.Subscribe(&MockEventHandler{})

		itemID := uuid.New()
		event, err := NewEvent(ItemDelivered, 42, itemID, nil)
		require.NoError(t, err)
		require.NoError(t, bus.EmitEvent(context.Background(), event))

		entries := logBuf.EntriesWithMessage("event dispatched")
		require.Len(t, entries, 1)
		assert.Equal(t, string(ItemDelivered), entries[0]["event_type"])
		assert.EqualValues(t, 42, entries[0]["user_id"])
		assert.Equal(t, itemID.String(), entries[0]["item_id"])
		assert.EqualValues(t, 1, entries[0]["handlers"])
	})

	t.Run("nop emitter", func(t *testing.T) {
		event, err := NewEvent(ItemFailed, 1, uuid.New(), nil)
		require.NoError(t, err)
		assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), event))
	})
}
