package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogFileSizeMB  = 50
	maxLogFileBackups = 5
	maxLogFileAgeDays = 28
)

// ParseLevel maps a config log level (DEBUG, INFO, WARNING, ERROR) to a slog level.
// Unknown values fall back to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a JSON slog logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// InitJSONLogger configures and sets the default slog logger to use JSON format.
// When logFile is set, output is also written to a size-rotated file.
// The returned closer releases the file and must be closed on shutdown.
func InitJSONLogger(level, logFile string) io.Closer {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxLogFileSizeMB,
			MaxBackups: maxLogFileBackups,
			MaxAge:     maxLogFileAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	slog.SetDefault(New(out, level))
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
