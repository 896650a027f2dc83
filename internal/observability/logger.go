// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the structured logger and the Prometheus
// metrics shared by the collection pipeline, the CLI and the HTTP server.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// DefaultLoggingConfig returns the logger settings used when none are configured.
func DefaultLoggingConfig() types.LoggingConfig {
	return types.LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// NewLogger creates a zerolog logger writing to the configured output.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	default:
		output = os.Stderr
	}
	return NewLoggerTo(output, cfg)
}

// NewLoggerTo creates a logger writing to w. Console and pretty formats use
// zerolog's human-readable writer.
func NewLoggerTo(w io.Writer, cfg types.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithRunContext tags a logger with the run id and the week being processed.
func WithRunContext(logger zerolog.Logger, runID, weekKey string) zerolog.Logger {
	return logger.With().
		Str("run_id", runID).
		Str("week", weekKey).
		Logger()
}

// WithSourceContext tags a logger with the logical source and query.
func WithSourceContext(logger zerolog.Logger, source types.SourceID, query string) zerolog.Logger {
	return logger.With().
		Str("source", string(source)).
		Str("query", query).
		Logger()
}
