// Package logging provides a zerolog wrapper with the CLI's defaults.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// Options configures the logger
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
	Writer io.Writer
}

// New builds a logger from opts. Output defaults to stderr so stdout stays
// free for command output.
func New(opts Options) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opts.Writer != nil {
		w = opts.Writer
	}
	if strings.ToLower(strings.TrimSpace(opts.Format)) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opts.Writer != nil}
	}

	log := zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
	return &log
}

// Nop returns a disabled logger, useful as a default in library code and tests.
func Nop() *Logger {
	log := zerolog.Nop()
	return &log
}

// Named returns a child logger with a component field
func Named(parent *Logger, component string) *Logger {
	if parent == nil {
		parent = Nop()
	}
	if component == "" {
		return parent
	}
	ll := parent.With().Str("component", component).Logger()
	return &ll
}

// ParseLevel maps a level name to a zerolog level; unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
