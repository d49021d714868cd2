// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level       string    // zerolog level name; unknown or empty means info
	ServiceName string    // attached to every event as "service"
	Pretty      bool      // human-readable console output instead of JSON
	Output      io.Writer // defaults to os.Stdout
}

// New returns a logger configured from cfg.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.ServiceName != "" {
		l = l.Str("service", cfg.ServiceName)
	}
	return l.Logger()
}

// Nop returns a disabled logger, convenient in tests.
func Nop() zerolog.Logger { return zerolog.Nop() }
