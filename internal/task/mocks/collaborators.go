// Package mocks provides hand-written test doubles for the task package
// collaborators. Each mock delegates to an optional function field and falls
// back to a harmless default when the field is nil.
package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/trackbot/internal/domain"
)

// Searcher is a mock implementation of task.Searcher.
type Searcher struct {
	SearchFunc func(ctx context.Context, query string, limit int) ([]domain.Track, error)

	mu      sync.Mutex
	queries []string
}

// Search implements the Searcher interface for testing.
func (m *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}

// Queries returns every query passed to Search, in call order.
func (m *Searcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// PlaylistExpander is a mock implementation of task.PlaylistExpander.
type PlaylistExpander struct {
	ExpandPlaylistFunc func(ctx context.Context, playlistURL string) ([]domain.Track, error)
}

// ExpandPlaylist implements the PlaylistExpander interface for testing.
func (m *PlaylistExpander) ExpandPlaylist(ctx context.Context, playlistURL string) ([]domain.Track, error) {
	if m.ExpandPlaylistFunc != nil {
		return m.ExpandPlaylistFunc(ctx, playlistURL)
	}
	return nil, nil
}

// Fetcher is a mock implementation of task.Fetcher.
type Fetcher struct {
	FetchFunc func(ctx context.Context, url string, dir string) (string, string, error)

	mu   sync.Mutex
	urls []string
}

// Fetch implements the Fetcher interface for testing.
func (m *Fetcher) Fetch(ctx context.Context, url string, dir string) (string, string, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, url, dir)
	}
	return dir + "/track.mp3", "", nil
}

// URLs returns every url passed to Fetch, in call order.
func (m *Fetcher) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}

// Sandbox is a mock implementation of task.Sandbox.
type Sandbox struct {
	EnsureFunc func(user domain.UserID) (string, error)
	RemoveFunc func(user domain.UserID) error

	mu      sync.Mutex
	removed []domain.UserID
}

// Ensure implements the Sandbox interface for testing.
func (m *Sandbox) Ensure(user domain.UserID) (string, error) {
	if m.EnsureFunc != nil {
		return m.EnsureFunc(user)
	}
	return "sandbox/" + user.String(), nil
}

// Remove implements the Sandbox interface for testing.
func (m *Sandbox) Remove(user domain.UserID) error {
	m.mu.Lock()
	m.removed = append(m.removed, user)
	m.mu.Unlock()

	if m.RemoveFunc != nil {
		return m.RemoveFunc(user)
	}
	return nil
}

// Removed returns the users passed to Remove, in call order.
func (m *Sandbox) Removed() []domain.UserID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserID(nil), m.removed...)
}
