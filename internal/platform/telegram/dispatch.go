package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phrazzld/trackbot/internal/domain"
)

// dispatcher hands updates to one goroutine per user. Updates from the same
// user are handled in arrival order; different users never wait on each other.
// A user's goroutine exits once its backlog is empty.
type dispatcher struct {
	handle func(ctx context.Context, update tgbotapi.Update)

	mu sync.Mutex
	// a key is present while the user's goroutine runs; the slice is its backlog
	backlog map[domain.UserID][]tgbotapi.Update
	wg      sync.WaitGroup
}

func newDispatcher(handle func(ctx context.Context, update tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		handle:  handle,
		backlog: make(map[domain.UserID][]tgbotapi.Update),
	}
}

// dispatch queues update behind the user's earlier updates.
func (d *dispatcher) dispatch(ctx context.Context, user domain.UserID, update tgbotapi.Update) {
	d.mu.Lock()
	if pending, running := d.backlog[user]; running {
		d.backlog[user] = append(pending, update)
		d.mu.Unlock()
		return
	}
	d.backlog[user] = nil
	d.wg.Add(1)
	d.mu.Unlock()

	go d.drain(ctx, user, update)
}

func (d *dispatcher) drain(ctx context.Context, user domain.UserID, update tgbotapi.Update) {
	defer d.wg.Done()

	for {
		d.handle(ctx, update)

		d.mu.Lock()
		pending := d.backlog[user]
		if len(pending) == 0 {
			delete(d.backlog, user)
			d.mu.Unlock()
			return
		}
		update = pending[0]
		d.backlog[user] = pending[1:]
		d.mu.Unlock()
	}
}

// wait blocks until every user's backlog has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
