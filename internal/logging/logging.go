// Package logging sets up the session log file.
//
// The TUI owns the terminal, so log output goes to a file instead of
// stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// SessionLogger wraps a leveled logger writing to a file.
type SessionLogger struct {
	Logger *log.Logger
	Path   string
	file   *os.File
}

// New creates a session logger writing to path, creating parent
// directories as needed. An empty path returns a discard logger.
func New(path, level string) (*SessionLogger, error) {
	if path == "" {
		return &SessionLogger{Logger: log.New(io.Discard)}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(file, log.Options{
		Level:           ParseLevel(level),
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		Prefix:          "todosync",
	})

	return &SessionLogger{Logger: logger, Path: path, file: file}, nil
}

// Close closes the underlying log file.
func (s *SessionLogger) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// ParseLevel parses a string log level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
