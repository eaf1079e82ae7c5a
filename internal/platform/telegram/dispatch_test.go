package telegram

import (
	"context"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDispatcher_KeepsPerUserOrder(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[int64][]int)
	d := newDispatcher(func(_ context.Context, update tgbotapi.Update) {
		mu.Lock()
		defer mu.Unlock()
		user := update.Message.From.ID
		seen[user] = append(seen[user], update.UpdateID)
	})

	for i := 1; i <= 50; i++ {
		for _, user := range []int64{1, 2, 3} {
			d.dispatch(context.Background(), domain.UserID(user), textUpdate(user, i, "x"))
		}
	}
	d.wait()

	want := make([]int, 50)
	for i := range want {
		want[i] = i + 1
	}
	for _, user := range []int64{1, 2, 3} {
		assert.Equal(t, want, seen[user], "user %d", user)
	}

	d.mu.Lock()
	assert.Empty(t, d.backlog, "idle users leave no goroutine behind")
	d.mu.Unlock()
}
