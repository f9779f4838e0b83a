// Package logging builds the process-wide slog logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github-proxy-go/internal/config"
)

// New returns a logger writing to stdout at the configured level and format.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg.Log)
}

// NewWithWriter returns a logger writing to w. Unknown levels fall back to
// info and unknown formats to JSON.
func NewWithWriter(w io.Writer, lc config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(lc.Level)}

	var h slog.Handler
	switch strings.ToLower(lc.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
