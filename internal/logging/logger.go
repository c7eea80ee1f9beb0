package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// ParseLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewConsoleHandler writes colored text when w is a terminal outside
// production, JSON otherwise.
func NewConsoleHandler(w io.Writer, level slog.Level, production bool) slog.Handler {
	if !production {
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return tint.NewHandler(w, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})
		}
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the stdout handler as the default logger and returns it so
// it can be combined with other sinks later.
func Setup(level string, production bool) slog.Handler {
	handler := NewConsoleHandler(os.Stdout, ParseLevel(level), production)
	slog.SetDefault(slog.New(handler))
	return handler
}
