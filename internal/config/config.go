package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName   string `mapstructure:"app_name"`
	Env       string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogColor  bool   `mapstructure:"log_color"`

	BaseURL        string        `mapstructure:"base_url"`
	AuthToken      string        `mapstructure:"auth_token"`
	LogEnabled     bool          `mapstructure:"log_enabled"`
	NullBodyOnPost bool          `mapstructure:"null_body_on_post"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`

	HeadersFile       string            `mapstructure:"headers_file"`
	AdditionalHeaders map[string]string `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`

	HistoryType            string        `mapstructure:"history_type"`
	HistoryPath            string        `mapstructure:"history_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"base-url":     "base_url",
	"token":        "auth_token",
	"log-enabled":  "log_enabled",
	"log-level":    "log_level",
	"timeout":      "timeout_seconds",
	"headers-file": "headers_file",
}

// Load reads configuration from configs/.env, environment variables and, when non-nil, flags.
// Flags that were set on the command line win over the environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-request-kit")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "debug")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_color", true)
	v.SetDefault("log_enabled", true)
	v.SetDefault("null_body_on_post", false)
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("headers_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("history_type", "none")
	v.SetDefault("history_path", "./data/history.db")
	v.SetDefault("history_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("base_url", "")
	v.SetDefault("auth_token", "")

	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	if cfg.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid timeout_seconds (must be zero or positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.HistoryTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if cfg.HistoryCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.HistoryTTL = time.Duration(cfg.HistoryTTLSeconds) * time.Second
	cfg.HistoryCleanupInterval = time.Duration(cfg.HistoryCleanupSeconds) * time.Second

	if strings.TrimSpace(cfg.HeadersFile) != "" {
		headers, err := LoadHeaders(cfg.HeadersFile)
		if err != nil {
			return nil, err
		}
		cfg.AdditionalHeaders = headers
	}

	return &cfg, nil
}

func validateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (must include scheme and host)", raw)
	}
	return nil
}
