package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// New builds a zerolog.Logger from cfg. Callers own the result and pass
// it (or a WithXxx derivative) into component constructors rather than
// reaching for a package global.
func New(cfg Config) zerolog.Logger {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

// WithComponent derives a child logger tagged with a component field.
func WithComponent(base zerolog.Logger, component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}

// WithNodeID derives a child logger tagged with a node_id field.
func WithNodeID(base zerolog.Logger, nodeID string) zerolog.Logger {
	return base.With().Str("node_id", nodeID).Logger()
}

// WithServiceID derives a child logger tagged with a service_id field.
func WithServiceID(base zerolog.Logger, serviceID string) zerolog.Logger {
	return base.With().Str("service_id", serviceID).Logger()
}

// WithTaskID derives a child logger tagged with a task_id field.
func WithTaskID(base zerolog.Logger, taskID string) zerolog.Logger {
	return base.With().Str("task_id", taskID).Logger()
}
