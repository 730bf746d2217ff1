// Package logging configures the process-wide slog logger.
//
// The terminal belongs to the UI, so logs never go to stdout or stderr.
// By default they are discarded; in debug mode they are appended to a
// file under the config directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileName is the debug log written inside the config directory.
const FileName = "debug.log"

// Format represents a log output format.
type Format int

const (
	// FormatText outputs logs in human-readable text format.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// New builds a logger writing to w at the given level.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs the default logger. With debug off it discards
// everything and returns a no-op closer. With debug on it appends
// debug-level text logs to dir/debug.log.
func Setup(dir string, debug bool) (io.Closer, error) {
	if !debug {
		slog.SetDefault(New(io.Discard, slog.LevelError, FormatText))
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening debug log: %w", err)
	}

	slog.SetDefault(New(f, slog.LevelDebug, FormatText))
	slog.Debug("debug logging enabled", "path", path, "pid", os.Getpid())
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
