package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/trackbot/internal/domain"
)

// Type identifies the kind of lifecycle event.
type Type string

// Event types emitted by the task runner.
const (
	ItemQueued    Type = "item.queued"
	ItemDelivered Type = "item.delivered"
	ItemNoResults Type = "item.no_results"
	ItemFailed    Type = "item.failed"
	SessionReaped Type = "session.reaped"
)

// Event is a single lifecycle notification about a user's work.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   Type          `json:"type"`
	UserID domain.UserID `json:"user_id"`

	// ItemID is uuid.Nil for session-level events
	ItemID uuid.UUID `json:"item_id"`

	// Payload contains event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of the given type. A nil payload is omitted.
func NewEvent(eventType Type, userID domain.UserID, itemID uuid.UUID, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		ItemID:    itemID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the runner to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
