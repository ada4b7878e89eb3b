package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. LOG_FORMAT=json selects the JSON
// handler for production; anything else falls back to text output.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
