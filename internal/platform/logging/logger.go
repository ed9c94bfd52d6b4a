// Package logging provides structured logging using Go's slog package,
// with secret redaction so the UnbelievaBoat application token can never
// leak into log output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charm "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File rotation defaults.
const (
	defaultFileMaxSizeMB = 100
	defaultFileMaxAge    = 28
	defaultFileBackups   = 3
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	File   string // optional path; JSON output with rotation when set
}

// New creates a configured *slog.Logger. Text format uses a pretty terminal
// handler, JSON a plain slog JSON handler; both redact secrets. When a file
// is configured, a rotated JSON copy is written there as well.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a configured *slog.Logger with a custom terminal
// writer.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		charmLogger := charm.NewWithOptions(w, charm.Options{Level: charmLevel(level)})
		handler = newRedactHandler(charmLogger)
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: NewReplaceAttr(),
		})
	}

	if cfg.File != "" {
		fileHandler := slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    defaultFileMaxSizeMB,
			MaxAge:     defaultFileMaxAge,
			MaxBackups: defaultFileBackups,
			Compress:   true,
		}, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: NewReplaceAttr(),
		})
		handler = NewMultiHandler(handler, fileHandler)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// charmLevel converts an slog.Level to the charmbracelet equivalent.
func charmLevel(level slog.Level) charm.Level {
	switch level {
	case slog.LevelDebug:
		return charm.DebugLevel
	case slog.LevelWarn:
		return charm.WarnLevel
	case slog.LevelError:
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}
