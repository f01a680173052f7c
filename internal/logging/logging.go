package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much the process logs.
type Config struct {
	Level string // debug, info, warn, error

	// File enables rotated file logging when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	JSON bool
}

// New builds a slog.Logger writing to stdout and, when configured, a
// rotating file.
func New(cfg Config) *slog.Logger {
	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	out := io.MultiWriter(writers...)
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

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

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
