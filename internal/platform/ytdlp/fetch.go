package ytdlp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/trackbot/internal/domain"
	"github.com/phrazzld/trackbot/internal/redact"
)

// metaExt is the extension of the title sidecar written next to each file.
const metaExt = ".meta"

type meta struct {
	Title string `json:"title"`
}

// CacheKey returns the cache file stem for url.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

// Fetch downloads url as audio into dir and returns the file path and the
// resolved title. A previous download of the same url into the same dir is
// returned without running yt-dlp; a missing or unreadable sidecar forces a
// fresh download.
func (c *Client) Fetch(ctx context.Context, url string, dir string) (string, string, error) {
	if strings.TrimSpace(url) == "" {
		return "", "", domain.ErrEmptyPayload
	}
	if dir == "" {
		return "", "", fmt.Errorf("%w: empty directory", domain.ErrValidation)
	}

	key := CacheKey(url)
	audioPath := filepath.Join(dir, key+"."+c.audioFormat)
	metaPath := filepath.Join(dir, key+metaExt)

	if title, ok := c.cached(audioPath, metaPath); ok {
		c.logger.Debug("cache hit", "key", key)
		return audioPath, title, nil
	}

	out, err := c.run(ctx, "fetch",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", c.audioFormat,
		"--audio-quality", c.audioQuality,
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--no-simulate",
		"--print", "after_move:title",
		"--output", filepath.Join(dir, key+".%(ext)s"),
		"--",
		url,
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", "", fmt.Errorf("%w: output file missing: %w", domain.ErrFetchFailed, err)
	}

	title := lastLine(out)
	if err := writeMeta(metaPath, title); err != nil {
		// the audio is still usable; the next call simply downloads again
		c.logger.Warn("failed to write cache metadata", "key", key, "error", redact.Error(err))
	}

	return audioPath, title, nil
}

func (c *Client) cached(audioPath, metaPath string) (string, bool) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", false
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return "", false
	}

	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn("discarding corrupt cache metadata", "path", metaPath, "error", err)
		return "", false
	}
	return m.Title, true
}

func writeMeta(path, title string) error {
	data, err := json.Marshal(meta{Title: title})
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
