package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init configures the process logger. Production always logs JSON at info level or above;
// other environments honour the configured level and format.
func Init(env, level, format string) *slog.Logger {
	return InitWithWriter(os.Stderr, env, level, format)
}

func InitWithWriter(w io.Writer, env, level, format string) *slog.Logger {
	var handler slog.Handler

	if env == "production" {
		lvl := parseLevel(level)
		if lvl < slog.LevelInfo {
			lvl = slog.LevelInfo
		}
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development", "debug", "text")
	}
	return defaultLogger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
