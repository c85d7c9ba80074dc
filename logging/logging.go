// Package logging builds the zerolog loggers used across the simulator.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects how logs are written.
type Config struct {
	// Level is a zerolog level name such as "debug" or "info". Empty means
	// info.
	Level string

	// Console writes human readable lines instead of JSON.
	Console bool

	// Output defaults to stderr.
	Output io.Writer
}

// New creates a logger according to the config.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel

	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}

		level = l
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.Console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Component derives a logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
