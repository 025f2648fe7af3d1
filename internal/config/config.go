// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Default values.
const (
	DefaultServerURL      = "https://jsonplaceholder.typicode.com"
	DefaultRequestTimeout = "15s"
	DefaultErrorDisplay   = "3s"
	DefaultLogLevel       = "info"
)

// Config holds the full configuration for todosync.
type Config struct {
	// Remote store
	ServerURL         string `toml:"server_url"`
	OwnerID           int    `toml:"owner_id"`
	AuthToken         string `toml:"auth_token"`
	RequestTimeout    string `toml:"request_timeout"`
	ValidateResponses bool   `toml:"validate_responses"`

	// UI
	ErrorDisplay string `toml:"error_display"`

	// Session log
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`

	// Derived, not read from files.
	RequestTimeoutDur time.Duration `toml:"-"`
	ErrorDisplayDur   time.Duration `toml:"-"`
}

// setDefaults fills in default values.
func setDefaults(cfg *Config) {
	cfg.ServerURL = DefaultServerURL
	cfg.RequestTimeout = DefaultRequestTimeout
	cfg.ErrorDisplay = DefaultErrorDisplay
	cfg.LogLevel = DefaultLogLevel
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	if cfg.OwnerID <= 0 {
		return fmt.Errorf("owner_id is required and must be positive, got %d", cfg.OwnerID)
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", cfg.ServerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server_url %q must be an absolute URL", cfg.ServerURL)
	}

	cfg.RequestTimeoutDur, err = time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid request_timeout %q: %w", cfg.RequestTimeout, err)
	}
	if cfg.RequestTimeoutDur <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}

	cfg.ErrorDisplayDur, err = time.ParseDuration(cfg.ErrorDisplay)
	if err != nil {
		return fmt.Errorf("invalid error_display %q: %w", cfg.ErrorDisplay, err)
	}
	if cfg.ErrorDisplayDur <= 0 {
		return fmt.Errorf("error_display must be positive, got %s", cfg.ErrorDisplay)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	cfg.LogFile = expandPath(cfg.LogFile)
	return nil
}
