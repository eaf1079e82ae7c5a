package task

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/events"
	"github.com/phrazzld/trackbot/internal/platform/logger"
	"github.com/phrazzld/trackbot/internal/task/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFixture struct {
	searcher *mocks.Searcher
	expander *mocks.PlaylistExpander
	fetcher  *mocks.Fetcher
	sandbox  *mocks.Sandbox
	counter  *events.Counter
	runner   *Runner
}

func newRunnerFixture(t *testing.T, log *slog.Logger) *runnerFixture {
	t.Helper()

	if log == nil {
		log = discardLogger()
	}

	f := &runnerFixture{
		searcher: &mocks.Searcher{},
		expander: &mocks.PlaylistExpander{},
		fetcher:  &mocks.Fetcher{},
		sandbox:  &mocks.Sandbox{},
		counter:  events.NewCounter(),
	}
	emitter := events.NewBus(log)
	emitter.Subscribe(f.counter)

	r, err := NewRunner(Dependencies{
		Searcher: f.searcher,
		Expander: f.expander,
		Fetcher:  f.fetcher,
		Sandbox:  f.sandbox,
		Emitter:  emitter,
	}, DefaultRunnerConfig(), log)
	require.NoError(t, err)
	t.Cleanup(r.Stop)

	f.runner = r
	return f
}

func (f *runnerFixture) submit(t *testing.T, user domain.UserID, text string, reply domain.ReplyTarget) SubmitResult {
	t.Helper()

	result, err := f.runner.Submit(context.Background(), Request{UserID: user, Text: text, Reply: reply})
	require.NoError(t, err)
	return result
}

func TestNewRunner_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(Dependencies{}, DefaultRunnerConfig(), discardLogger())
	assert.ErrorIs(t, err, ErrNilSandbox)

	_, err = NewRunner(Dependencies{}, DefaultRunnerConfig(), nil)
	assert.ErrorIs(t, err, ErrNilLogger)
}

func TestRunner_SearchQueryScenario(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)
	f.searcher.SearchFunc = func(_ context.Context, query string, _ int) ([]domain.Track, error) {
		if query != "lofi beats" {
			return nil, nil
		}
		return []domain.Track{{Title: "Lofi Beats Mix", URL: "https://youtu.be/abc123"}}, nil
	}
	f.fetcher.FetchFunc = func(_ context.Context, url, _ string) (string, string, error) {
		return "sandbox/9f86d0.mp3", "Lofi Beats Mix", nil
	}
	reply := &mocks.Reply{}

	f.submit(t, 42, "lofi beats", reply)
	f.runner.Wait()

	assert.Equal(t, []string{"https://youtu.be/abc123"}, f.fetcher.URLs())
	assert.Equal(t, []mocks.Message{
		{Kind: mocks.KindAudio, Text: "Lofi Beats Mix", Path: "sandbox/9f86d0.mp3"},
	}, reply.Audio())
	assert.Equal(t, int64(1), f.counter.Count(events.ItemDelivered))
}

func TestRunner_PlaylistScenario(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)
	f.expander.ExpandPlaylistFunc = func(context.Context, string) ([]domain.Track, error) {
		return []domain.Track{
			{Title: "One", URL: "https://youtu.be/1"},
			{Title: "Two", URL: "https://youtu.be/2"},
			{Title: "Three", URL: "https://youtu.be/3"},
		}, nil
	}
	f.fetcher.FetchFunc = func(_ context.Context, url, _ string) (string, string, error) {
		return url + ".mp3", "track " + url[len(url)-1:], nil
	}
	reply := &mocks.Reply{}

	result := f.submit(t, 42, playlistURL, reply)
	require.Equal(t, 3, result.Queued)
	f.runner.Wait()

	// "searching next" appears only between items 1→2 and 2→3
	assert.Equal(t, []mocks.Message{
		{Kind: mocks.KindText, Text: NoticeSearching},
		{Kind: mocks.KindAudio, Text: "track 1", Path: "https://youtu.be/1.mp3"},
		{Kind: mocks.KindText, Text: NoticeNextTrack},
		{Kind: mocks.KindText, Text: NoticeSearching},
		{Kind: mocks.KindAudio, Text: "track 2", Path: "https://youtu.be/2.mp3"},
		{Kind: mocks.KindText, Text: NoticeNextTrack},
		{Kind: mocks.KindText, Text: NoticeSearching},
		{Kind: mocks.KindAudio, Text: "track 3", Path: "https://youtu.be/3.mp3"},
	}, reply.Messages())
}

func TestRunner_BackToBackRequests(t *testing.T) {
	t.Parallel()

	log, logBuf := logger.GetTestLogger(t)
	f := newRunnerFixture(t, log)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f.fetcher.FetchFunc = func(ctx context.Context, url, _ string) (string, string, error) {
		if url == "https://youtu.be/first" {
			started <- struct{}{}
			<-release
		}
		return url + ".mp3", url, nil
	}
	reply := &mocks.Reply{}

	first := f.submit(t, 42, "https://youtu.be/first", reply)
	<-started
	second := f.submit(t, 42, "https://youtu.be/second", reply)

	assert.True(t, first.Spawned)
	assert.False(t, second.Spawned)
	assert.Contains(t, reply.Texts(), NoticePleaseWait)

	close(release)
	f.runner.Wait()

	audio := reply.Audio()
	require.Len(t, audio, 2)
	assert.Equal(t, "https://youtu.be/first", audio[0].Text)
	assert.Equal(t, "https://youtu.be/second", audio[1].Text)
	assert.Len(t, logBuf.EntriesWithMessage("worker started"), 1)
}

func TestRunner_ExactlyOneWorkerForBurst(t *testing.T) {
	t.Parallel()

	log, logBuf := logger.GetTestLogger(t)
	f := newRunnerFixture(t, log)

	release := make(chan struct{})
	var once sync.Once
	f.fetcher.FetchFunc = func(_ context.Context, url, _ string) (string, string, error) {
		once.Do(func() { <-release })
		return url + ".mp3", url, nil
	}
	reply := &mocks.Reply{}

	const n = 10
	payloads := make([]string, n)
	spawned := 0
	for i := 0; i < n; i++ {
		payloads[i] = "https://youtu.be/" + string(rune('a'+i))
		if f.submit(t, 42, payloads[i], reply).Spawned {
			spawned++
		}
	}
	close(release)
	f.runner.Wait()

	assert.Equal(t, 1, spawned)
	assert.Len(t, logBuf.EntriesWithMessage("worker started"), 1)

	audio := reply.Audio()
	require.Len(t, audio, n)
	for i, m := range audio {
		assert.Equal(t, payloads[i], m.Text, "delivery %d out of order", i)
	}
}

func TestRunner_DistinctUsersDoNotBlock(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)

	release := make(chan struct{})
	f.fetcher.FetchFunc = func(ctx context.Context, url, _ string) (string, string, error) {
		if url == "https://youtu.be/slow" {
			select {
			case <-release:
			case <-ctx.Done():
				return "", "", ctx.Err()
			}
		}
		return url + ".mp3", url, nil
	}
	slowReply := &mocks.Reply{}
	fastReply := &mocks.Reply{}

	f.submit(t, 1, "https://youtu.be/slow", slowReply)
	f.submit(t, 2, "https://youtu.be/fast", fastReply)

	require.Eventually(t, func() bool { return len(fastReply.Audio()) == 1 },
		time.Second, 5*time.Millisecond)
	assert.Empty(t, slowReply.Audio())
	assert.True(t, f.runner.Registry().HasActiveWorker(1))

	close(release)
	f.runner.Wait()
	assert.Len(t, slowReply.Audio(), 1)
}

func TestRunner_NoStrandedItemsAroundDrain(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)
	reply := &mocks.Reply{}

	const rounds = 50
	for round := 0; round < rounds; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.runner.Submit(context.Background(),
					Request{UserID: 42, Text: "https://youtu.be/x", Reply: reply})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	}
	f.runner.Wait()

	assert.Len(t, reply.Audio(), rounds*4)
	assert.False(t, f.runner.Registry().HasActiveWorker(42))
	assert.Equal(t, 0, f.runner.Registry().GetOrCreateQueue(42).Len())
}

func TestRunner_StartStop(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)
	require.NoError(t, f.runner.Start())

	f.runner.Stop()
	f.runner.Stop()

	_, err := f.runner.Submit(context.Background(), Request{UserID: 1, Text: "x", Reply: &mocks.Reply{}})
	assert.ErrorIs(t, err, ErrRunnerStopped)
	assert.ErrorIs(t, f.runner.Start(), ErrRunnerStopped)
}

func TestRunner_StopCancelsBetweenItems(t *testing.T) {
	t.Parallel()

	f := newRunnerFixture(t, nil)
	started := make(chan struct{}, 1)
	f.fetcher.FetchFunc = func(ctx context.Context, url, _ string) (string, string, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	reply := &mocks.Reply{}

	f.submit(t, 42, "https://youtu.be/a", reply)
	f.submit(t, 42, "https://youtu.be/b", reply)
	<-started

	f.runner.Stop()

	assert.Equal(t, []string{"https://youtu.be/a"}, f.fetcher.URLs())
	assert.False(t, f.runner.Registry().HasActiveWorker(42))
	assert.Equal(t, 1, f.runner.Registry().GetOrCreateQueue(42).Len())
}
