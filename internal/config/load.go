package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TRACKBOT"

// DefaultAPIEndpoint is the Telegram Bot API endpoint template.
const DefaultAPIEndpoint = "https://api.telegram.org/bot%s/%s"

// bindings maps every configuration key to its environment variable.
var bindings = []string{
	"bot.token",
	"bot.api_endpoint",
	"bot.poll_timeout_seconds",
	"bot.send_rate_per_second",
	"bot.send_burst",
	"server.port",
	"server.log_level",
	"storage.base_dir",
	"session.idle_timeout_seconds",
	"session.sweep_interval_seconds",
	"fetcher.ytdlp_path",
	"fetcher.cookies",
	"fetcher.search_limit",
	"fetcher.audio_format",
	"fetcher.audio_quality",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.api_endpoint", DefaultAPIEndpoint)
	v.SetDefault("bot.poll_timeout_seconds", 60)
	v.SetDefault("bot.send_rate_per_second", 20)
	v.SetDefault("bot.send_burst", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.base_dir", "tmp")
	v.SetDefault("session.idle_timeout_seconds", 600)
	v.SetDefault("session.sweep_interval_seconds", 60)
	v.SetDefault("fetcher.ytdlp_path", "yt-dlp")
	v.SetDefault("fetcher.search_limit", 1)
	v.SetDefault("fetcher.audio_format", "mp3")
	v.SetDefault("fetcher.audio_quality", "192")
}

// Load configuration from environment variables and optionally a config file.
// When configFile is empty, trackbot.{yaml,toml,json} is looked up in the
// working directory and silently skipped if absent.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("trackbot")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults (bot.token, fetcher.cookies) must be bound explicitly.
	for _, key := range bindings {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
