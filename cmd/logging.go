package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// setupLogger creates a logger with the specified configuration.
// Logs go to logFile when set, otherwise to a console writer on stderr.
func setupLogger(logFile, logLevel string) (zerolog.Logger, func()) {
	// Parse log level
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
			return logger, func() { _ = f.Close() }
		}
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
	}

	// Use pretty console output when logging to stderr
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, func() {}
}
