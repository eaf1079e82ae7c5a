// Package redact provides utilities for redacting sensitive information from strings
// before they are logged. The bot handles two kinds of secrets, the chat
// transport token and the source-site cookie material, and both can surface in
// error text from HTTP clients or from yt-dlp's stderr.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_BOT_TOKEN]"
	RedactedCookiePlaceholder     = "[REDACTED_COOKIE]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; more specific patterns come first.
var rules = []rule{
	// Bot API URLs embed the token as a path segment: /bot<token>/method
	{regexp.MustCompile(`/bot[^/\s]+/`), "/bot" + RedactionPlaceholder + "/"},

	// Bare bot tokens: <numeric bot id>:<secret>
	{regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}`), RedactedTokenPlaceholder},

	// Netscape cookie-jar lines: domain, flag, path, secure, expiry, name, value
	{
		regexp.MustCompile(`[^\s#]+\t(?:TRUE|FALSE)\t[^\t\n]*\t(?:TRUE|FALSE)\t\d+\t[^\t\n]+\t[^\s]+`),
		RedactedCookiePlaceholder,
	},

	// Cookie headers echoed by HTTP clients
	{regexp.MustCompile(`(?i)\b(?:set-)?cookie:\s*[^\n]+`), RedactedCookiePlaceholder},

	// Staged cookie files
	{regexp.MustCompile(`\S*cookies-[^\s/]*\.txt`), RedactedPathPlaceholder},

	// Credentials and tokens in key=value form
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllLiteralString(result, r.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Wrap returns err with its message redacted. errors.Is and errors.As still
// see the original chain through Unwrap.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &redactedError{err: err}
}

type redactedError struct {
	err error
}

func (e *redactedError) Error() string { return String(e.err.Error()) }

func (e *redactedError) Unwrap() error { return e.err }
