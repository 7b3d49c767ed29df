package player

import (
	"errors"

	"github.com/jfmyers9/encore/internal/music"
)

// ErrNoPreviewAvailable is returned by Play for tracks without a preview
// clip.
var ErrNoPreviewAvailable = errors.New("no preview available for this track")

// State is the playback state of the Controller.
type State int

const (
	StateIdle    State = iota // No track selected
	StateLoading                // Start scheduled or source loading
	StatePlaying                // Resource is rendering the track
	StatePaused                 // Halted by the user, position kept
	StateStopped                // Track selected, resource halted at the start
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is the observable playback state.
type Snapshot struct {
	Track     *music.Track // Current track, nil when idle
	IsPlaying bool
	Progress  float64 // Percent of the clip played, in [0, 100]
	State     State
}
