package task

import (
	"context"

	"github.com/phrazzld/trackbot/internal/domain"
)

// Searcher finds tracks matching a free-text query.
type Searcher interface {
	// Search returns at most limit results in relevance order. An empty
	// result is not an error.
	Search(ctx context.Context, query string, limit int) ([]domain.Track, error)
}

// PlaylistExpander lists the entries of a playlist.
type PlaylistExpander interface {
	// ExpandPlaylist returns the playlist entries in playlist order.
	ExpandPlaylist(ctx context.Context, playlistURL string) ([]domain.Track, error)
}

// Fetcher materializes a track as a local audio file.
type Fetcher interface {
	// Fetch downloads url into dir and returns the local file path and the
	// resolved title, which may be empty. Repeated calls for the same url and
	// dir are served from a cache.
	Fetch(ctx context.Context, url string, dir string) (path string, title string, err error)
}

// Sandbox resolves per-user working directories.
type Sandbox interface {
	Ensure(user domain.UserID) (string, error)
	Remove(user domain.UserID) error
}
