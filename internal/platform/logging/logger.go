package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/moviedata/reception/internal/platform/correlation"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger on stdout.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	InitLoggerTo(os.Stdout, level, format)
}

// InitLoggerTo is InitLogger with an explicit destination. The CLI logs to
// stderr so that stdout carries only JSON output.
func InitLoggerTo(w io.Writer, level, format string) {
	Logger = slog.New(NewHandler(w, level, format))
	slog.SetDefault(Logger)
}

// NewHandler builds the correlation-aware handler used by InitLoggerTo.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return correlation.NewHandler(handler)
}

func ParseLevel(level string) slog.Level {
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
