package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/trackbot/internal/config"
	"github.com/phrazzld/trackbot/internal/domain"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Client runs yt-dlp for searches, playlist listings and downloads.
type Client struct {
	binary       string
	cookies      string
	audioFormat  string
	audioQuality string
	tempDir      string
	runner       CommandRunner
	logger       *slog.Logger
}

// NewClient creates a Client from the fetcher configuration. A nil runner
// uses ExecRunner. Cookie material is not checked here; calls made without it
// fail with domain.ErrConfigurationMissing.
func NewClient(cfg config.FetcherConfig, runner CommandRunner, logger *slog.Logger) (*Client, error) {
	if cfg.YtDlpPath == "" {
		return nil, errors.New("yt-dlp path cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	format := cfg.AudioFormat
	if format == "" {
		format = "mp3"
	}
	quality := cfg.AudioQuality
	if quality == "" {
		quality = "192"
	}

	return &Client{
		binary:       cfg.YtDlpPath,
		cookies:      cfg.Cookies,
		audioFormat:  format,
		audioQuality: quality,
		runner:       runner,
		logger:       logger.With("component", "ytdlp"),
	}, nil
}

// SetTempDir sets where cookie files are staged. Empty means the system
// temp directory.
func (c *Client) SetTempDir(dir string) {
	c.tempDir = dir
}

// listing is the subset of yt-dlp's flat JSON output that is used.
type listing struct {
	Entries []listingEntry `json:"entries"`
}

type listingEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
}

func (e listingEntry) trackURL() string {
	switch {
	case e.WebpageURL != "":
		return e.WebpageURL
	case strings.HasPrefix(e.URL, "http"):
		return e.URL
	case e.ID != "":
		return watchURLPrefix + e.ID
	default:
		return ""
	}
}

// Search returns up to limit tracks matching query, best match first.
// No match is an empty slice and a nil error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyPayload
	}
	if limit < 1 {
		limit = 1
	}

	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	tracks, err := c.list(ctx, "search", target)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// ExpandPlaylist lists the entries of a playlist in playlist order.
func (c *Client) ExpandPlaylist(ctx context.Context, playlistURL string) ([]domain.Track, error) {
	if !domain.IsPlaylistURL(playlistURL) {
		return nil, fmt.Errorf("%w: not a playlist url", domain.ErrValidation)
	}

	tracks, err := c.list(ctx, "playlist", playlistURL)
	if err != nil {
		return nil, fmt.Errorf("expand playlist: %w", err)
	}
	return tracks, nil
}

func (c *Client) list(ctx context.Context, op, target string) ([]domain.Track, error) {
	out, err := c.run(ctx, op,
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
		"--",
		target,
	)
	if err != nil {
		return nil, err
	}

	var result listing
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}

	tracks := make([]domain.Track, 0, len(result.Entries))
	for _, entry := range result.Entries {
		url := entry.trackURL()
		if url == "" {
			continue
		}
		tracks = append(tracks, domain.Track{Title: entry.Title, URL: url})
	}
	return tracks, nil
}

// run stages cookies, runs yt-dlp with them and removes them afterwards.
func (c *Client) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	cookiePath, cleanup, err := stageCookies(c.tempDir, c.cookies)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	full := append([]string{"--cookies", cookiePath}, args...)
	c.logger.Debug("running yt-dlp", "operation", op)

	return c.runner.Run(ctx, c.binary, full...)
}
