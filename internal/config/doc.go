// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to the settings needed by the bot, the queue runner, the idle reaper
// and the yt-dlp collaborator while keeping configuration details separate
// from business logic.
package config
