package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/todosync/todosync.toml or ~/.todosync.toml)
// 3. Environment variables (TODOSYNC_*)
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findUserConfigFile returns the first existing user config file path, or "".
func findUserConfigFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "todosync", "todosync.toml")
		if fileExists(p) {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".todosync.toml")
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// loadConfigFile overlays values from a TOML file.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// loadFromEnv overrides config from TODOSYNC_* environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TODOSYNC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TODOSYNC_OWNER_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TODOSYNC_OWNER_ID %q: %w", v, err)
		}
		cfg.OwnerID = id
	}
	if v := os.Getenv("TODOSYNC_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("TODOSYNC_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = v
	}
	if v := os.Getenv("TODOSYNC_ERROR_DISPLAY"); v != "" {
		cfg.ErrorDisplay = v
	}
	if v := os.Getenv("TODOSYNC_VALIDATE_RESPONSES"); v != "" {
		cfg.ValidateResponses = isTruthy(v)
	}
	if v := os.Getenv("TODOSYNC_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TODOSYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// parseFlags registers CLI flags on fs and parses args. Flags override
// everything else.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Remote store base URL")
	fs.IntVar(&cfg.OwnerID, "owner", cfg.OwnerID, "Owner id whose todos to manage")
	fs.StringVar(&cfg.AuthToken, "token", cfg.AuthToken, "Bearer token for the remote store")
	fs.StringVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout (e.g. 15s)")
	fs.StringVar(&cfg.ErrorDisplay, "error-display", cfg.ErrorDisplay, "How long error banners stay visible")
	fs.BoolVar(&cfg.ValidateResponses, "validate", cfg.ValidateResponses, "Schema-check list payloads")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Session log file (empty disables logging)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Session log level (debug, info, warn, error)")
	return fs.Parse(args)
}

// expandPath expands a leading ~/ and environment variables in paths.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return expanded
	}
	if strings.HasPrefix(expanded, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, expanded[2:])
		}
	}
	return expanded
}
