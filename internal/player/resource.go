package player

import (
	"context"
	"time"
)

// EventKind identifies a Resource event.
type EventKind int

const (
	EventTimeUpdate EventKind = iota // Playback position advanced
	EventEnded                       // Playback reached the end of the source
	EventError                       // Asynchronous playback failure
)

// String returns a human-readable representation of the EventKind
func (k EventKind) String() string {
	switch k {
	case EventTimeUpdate:
		return "time_update"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by a Resource while it renders a source.
type Event struct {
	Kind    EventKind
	Source  string        // Source the event belongs to
	Elapsed time.Duration // Position, for EventTimeUpdate
	Total   time.Duration // Source length, for EventTimeUpdate; zero if unknown
	Err     error         // Cause, for EventError
}

// Resource renders one audio source at a time.
//
// The Controller serializes Load and Play calls. Pause and Rewind may be
// called at any time and must not block on an in-flight Load.
type Resource interface {
	// Load replaces the current source. It must honour ctx cancellation.
	Load(ctx context.Context, source string) error

	// Play starts or resumes the loaded source.
	Play() error

	// Pause halts playback, keeping the position.
	Pause()

	// Rewind moves the position back to the start.
	Rewind()

	// Listen registers the event callback. It is called once, before any
	// other method.
	Listen(fn func(Event))
}
