// Package logging builds the process-wide slog logger. Components derive
// their own child loggers from it via With("component", ...), so this is
// the only place that decides handler and level.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup creates the logger, installs it as the slog default, and returns
// it. The level string accepts debug, info, warn or error in any case;
// anything unrecognized falls back to info so a typo in MEDMOLE_LOG_LEVEL
// never silences the log.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}
