package cli

import (
	"io"
	"log/slog"
	"strings"
)

// LogEnv selects the engine's diagnostic log level
const LogEnv = "GTP_LOG"

// InitLogging installs the default slog logger. level is the value of
// GTP_LOG; anything unrecognized logs warnings and errors only.
func InitLogging(w io.Writer, level string) *slog.Logger {
	lv := new(slog.LevelVar)

	switch strings.ToUpper(level) {
	case "DEBUG":
		lv.Set(slog.LevelDebug)
	case "INFO":
		lv.Set(slog.LevelInfo)
	case "ERROR":
		lv.Set(slog.LevelError)
	default:
		lv.Set(slog.LevelWarn)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lv,
	}))

	// Replace the default logger
	slog.SetDefault(logger)
	return logger
}
