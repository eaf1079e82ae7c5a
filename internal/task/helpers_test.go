package task

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/task/mocks"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newItem(t *testing.T, user domain.UserID, payload string, reply domain.ReplyTarget) domain.WorkItem {
	t.Helper()

	if reply == nil {
		reply = &mocks.Reply{}
	}
	item, err := domain.NewWorkItem(user, payload, reply)
	require.NoError(t, err)
	return item
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
