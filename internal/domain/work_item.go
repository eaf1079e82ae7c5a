package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkItem is one requested unit of work: a free-text query or a source URL,
// plus the handle used to reply to the requester. It is immutable once created.
type WorkItem struct {
	id        uuid.UUID
	userID    UserID
	payload   string
	reply     ReplyTarget
	createdAt time.Time
}

// NewWorkItem creates a WorkItem for the given user. The payload is trimmed;
// an empty payload, an invalid user or a nil reply target is rejected.
func NewWorkItem(userID UserID, payload string, reply ReplyTarget) (WorkItem, error) {
	if err := userID.Validate(); err != nil {
		return WorkItem{}, err
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return WorkItem{}, ErrEmptyPayload
	}

	if reply == nil {
		return WorkItem{}, ErrNilReplyTarget
	}

	return WorkItem{
		id:        uuid.New(),
		userID:    userID,
		payload:   payload,
		reply:     reply,
		createdAt: time.Now().UTC(),
	}, nil
}

// ID returns the item's unique identifier, used to correlate log lines.
func (w WorkItem) ID() uuid.UUID { return w.id }

// UserID returns the owner of the item.
func (w WorkItem) UserID() UserID { return w.userID }

// Payload returns the raw query or URL.
func (w WorkItem) Payload() string { return w.payload }

// Reply returns the reply target of the requester.
func (w WorkItem) Reply() ReplyTarget { return w.reply }

// CreatedAt returns the creation time in UTC.
func (w WorkItem) CreatedAt() time.Time { return w.createdAt }

// IsSourceURL reports whether the payload is a direct source URL rather than a
// free-text query.
func (w WorkItem) IsSourceURL() bool { return IsSourceURL(w.payload) }
