package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aoi-sora/animepipe/config"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// New builds a *slog.Logger for component according to cfg.
//
// The file sink is named <component>.<YYYY-MM-DD>, stamped at open
// time, with lumberjack handling size-based rotation within the day.
//
// When cfg.Console and cfg.File are both enabled, log records are
// written to both sinks. When neither is enabled, records are
// discarded.
func New(cfg config.LoggingConfig, component string) *slog.Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File {
		name := component + "." + time.Now().Format("2006-01-02")
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, name),
			MaxSize:    100, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		})
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	level := parseLevel(cfg.DefaultLevel)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler).With("component", component)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
