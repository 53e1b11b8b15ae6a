package config

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it writes one JSON object per line; otherwise it
// writes human-readable console output.
func (c *Config) NewLogger(w io.Writer) zerolog.Logger {
	out := w
	if strings.ToLower(c.LogFormat) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).
		Level(parseLogLevel(c.LogLevel)).
		With().
		Timestamp().
		Logger()
}

// parseLogLevel converts a string log level to a zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
