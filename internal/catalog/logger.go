package catalog

import "github.com/rs/zerolog"

// Logger adapts a zerolog.Logger to the spotify.Logger interface.
type Logger struct {
	zerolog.Logger
}

// NewLogger wraps logger for use by the Spotify client.
func NewLogger(logger zerolog.Logger) Logger {
	return Logger{logger.With().Str("component", "spotify").Logger()}
}

// Debugf logs a formatted debug message.
func (l Logger) Debugf(format string, args ...interface{}) {
	l.Logger.Debug().Msgf(format, args...)
}
