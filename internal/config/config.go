package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Bot     BotConfig     `mapstructure:"bot" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Session SessionConfig `mapstructure:"session" validate:"required"`
	Fetcher FetcherConfig `mapstructure:"fetcher" validate:"required"`
}

// BotConfig contains the chat transport settings.
type BotConfig struct {
	Token              string  `mapstructure:"token" validate:"required"`
	APIEndpoint        string  `mapstructure:"api_endpoint" validate:"required,startswith=http"`
	PollTimeoutSeconds int     `mapstructure:"poll_timeout_seconds" validate:"gt=0"`
	SendRatePerSecond  float64 `mapstructure:"send_rate_per_second" validate:"gt=0"`
	SendBurst          int     `mapstructure:"send_burst" validate:"gt=0"`
}

// ServerConfig contains the admin HTTP server and logging settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig locates the per-user working directories.
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir" validate:"required"`
}

// SessionConfig controls idle-session reclamation.
type SessionConfig struct {
	IdleTimeoutSeconds   int `mapstructure:"idle_timeout_seconds" validate:"gt=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"gt=0"`
}

// IdleTimeout returns the inactivity timeout as a duration.
func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// SweepInterval returns the reaper interval as a duration.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// FetcherConfig contains the yt-dlp collaborator settings.
//
// Cookies is opaque cookie material for the source site. It is optional at
// startup; calls that need it fail with domain.ErrConfigurationMissing.
type FetcherConfig struct {
	YtDlpPath    string `mapstructure:"ytdlp_path" validate:"required"`
	Cookies      string `mapstructure:"cookies"`
	SearchLimit  int    `mapstructure:"search_limit" validate:"gte=1,lte=50"`
	AudioFormat  string `mapstructure:"audio_format" validate:"required,oneof=mp3 m4a opus"`
	AudioQuality string `mapstructure:"audio_quality" validate:"required,numeric"`
}
