package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	return func() {
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies that Load fills every optional setting with its default
// when only the bot token is supplied.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"TRACKBOT_BOT_TOKEN":        "123456:test-token",
		"TRACKBOT_SERVER_PORT":      "",
		"TRACKBOT_SERVER_LOG_LEVEL": "",
		"TRACKBOT_FETCHER_COOKIES":  "",
	})
	defer cleanup()

	cfg, err := Load("")

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, DefaultAPIEndpoint, cfg.Bot.APIEndpoint)
	assert.Equal(t, 60, cfg.Bot.PollTimeoutSeconds)
	assert.Equal(t, "tmp", cfg.Storage.BaseDir)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval())
	assert.Equal(t, "yt-dlp", cfg.Fetcher.YtDlpPath)
	assert.Equal(t, 1, cfg.Fetcher.SearchLimit)
	assert.Equal(t, "mp3", cfg.Fetcher.AudioFormat)
	assert.Equal(t, "192", cfg.Fetcher.AudioQuality)
	assert.Empty(t, cfg.Fetcher.Cookies, "cookies are optional at startup")
}

// TestLoadFromEnv verifies that the Load function correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"TRACKBOT_BOT_TOKEN":                      "123456:test-token",
		"TRACKBOT_SERVER_PORT":                    "9090",
		"TRACKBOT_SERVER_LOG_LEVEL":               "debug",
		"TRACKBOT_STORAGE_BASE_DIR":               "/var/lib/trackbot",
		"TRACKBOT_SESSION_IDLE_TIMEOUT_SECONDS":   "120",
		"TRACKBOT_SESSION_SWEEP_INTERVAL_SECONDS": "5",
		"TRACKBOT_FETCHER_COOKIES":                "# Netscape HTTP Cookie File\\n.youtube.com\tTRUE",
		"TRACKBOT_FETCHER_SEARCH_LIMIT":           "3",
	})
	defer cleanup()

	cfg, err := Load("")

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "123456:test-token", cfg.Bot.Token)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/trackbot", cfg.Storage.BaseDir)
	assert.Equal(t, 2*time.Minute, cfg.Session.IdleTimeout())
	assert.Equal(t, 5*time.Second, cfg.Session.SweepInterval())
	assert.Equal(t, "# Netscape HTTP Cookie File\\n.youtube.com\tTRUE", cfg.Fetcher.Cookies)
	assert.Equal(t, 3, cfg.Fetcher.SearchLimit)
}

// TestLoadFromFile verifies that a config file is read and that the environment
// takes precedence over it.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trackbot.yaml")
	content := `
bot:
  token: "file-token"
server:
  port: 7070
  log_level: warn
storage:
  base_dir: /srv/trackbot
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cleanup := setupEnv(t, map[string]string{
		"TRACKBOT_BOT_TOKEN":        "",
		"TRACKBOT_SERVER_PORT":      "9191",
		"TRACKBOT_SERVER_LOG_LEVEL": "",
	})
	defer cleanup()

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, 9191, cfg.Server.Port, "environment should override the file")
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "/srv/trackbot", cfg.Storage.BaseDir)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing bot token",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN": "",
			},
		},
		{
			name: "Invalid port number",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN":   "123456:test-token",
				"TRACKBOT_SERVER_PORT": "999999",
			},
		},
		{
			name: "Invalid log level",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN":        "123456:test-token",
				"TRACKBOT_SERVER_LOG_LEVEL": "verbose",
			},
		},
		{
			name: "Zero idle timeout",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN":                    "123456:test-token",
				"TRACKBOT_SESSION_IDLE_TIMEOUT_SECONDS": "0",
			},
		},
		{
			name: "Search limit out of range",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN":            "123456:test-token",
				"TRACKBOT_FETCHER_SEARCH_LIMIT": "500",
			},
		},
		{
			name: "Unsupported audio format",
			envVars: map[string]string{
				"TRACKBOT_BOT_TOKEN":            "123456:test-token",
				"TRACKBOT_FETCHER_AUDIO_FORMAT": "wav",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			cfg, err := Load("")

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
