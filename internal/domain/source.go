package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// sourceURLRe matches text that starts with a link to the supported video
// site, with or without scheme and subdomain.
var sourceURLRe = regexp.MustCompile(`(?i)^\s*(https?://)?([a-z0-9-]+\.)*(youtube\.com|youtu\.be)/`)

// IsSourceURL reports whether s points at the source site and can be fetched
// directly without a search.
func IsSourceURL(s string) bool {
	return sourceURLRe.MatchString(s)
}

// IsPlaylistURL reports whether s references a playlist page
// (https://www.youtube.com/playlist?list=...). Watch links that merely carry
// a list parameter are treated as single tracks.
func IsPlaylistURL(s string) bool {
	s = strings.TrimSpace(s)
	if !IsSourceURL(s) {
		return false
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return false
	}

	return strings.TrimSuffix(u.Path, "/") == "/playlist" && u.Query().Get("list") != ""
}
