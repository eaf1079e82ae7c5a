package ytdlp

import (
	"fmt"
	"os"
	"strings"

	"github.com/phrazzld/trackbot/internal/domain"
)

// expandCookies turns literal "\n" sequences into newlines. Cookie material
// supplied through a single-line environment variable relies on this.
func expandCookies(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}

// stageCookies writes the cookie material to a new 0600 temp file in dir
// (the system temp dir when empty). The returned cleanup removes the file
// and is safe to call more than once.
func stageCookies(dir, raw string) (string, func(), error) {
	if strings.TrimSpace(raw) == "" {
		return "", func() {}, fmt.Errorf("%w: cookie material", domain.ErrConfigurationMissing)
	}

	f, err := os.CreateTemp(dir, "cookies-*.txt")
	if err != nil {
		return "", func() {}, fmt.Errorf("create cookie file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("restrict cookie file: %w", err)
	}
	if _, err := f.WriteString(expandCookies(raw)); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write cookie file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close cookie file: %w", err)
	}

	return path, cleanup, nil
}
