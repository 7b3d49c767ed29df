package audio

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/player"
)

// drainedStreamer is an exhausted clip that reports err from its decoder.
type drainedStreamer struct {
	err error
}

func (d *drainedStreamer) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (d *drainedStreamer) Err() error { return d.err }
func (d *drainedStreamer) Len() int { return 0 }
func (d *drainedStreamer) Position() int { return 0 }
func (d *drainedStreamer) Seek(p int) error { return nil }
func (d *drainedStreamer) Close() error { return nil }

func TestEnded(t *testing.T) {
	truncated := errors.New("unexpected EOF")

	tests := []struct {
		name     string
		err      error
		wantKind player.EventKind
	}{
		{name: "clean end", wantKind: player.EventEnded},
		{name: "decoder error", err: truncated, wantKind: player.EventError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBeep(zerolog.Nop())
			streamer := &drainedStreamer{err: tt.err}
			b.streamer = streamer
			b.queued = true

			var got []player.Event
			b.Listen(func(ev player.Event) { got = append(got, ev) })

			b.ended("clip", streamer)

			if len(got) != 1 {
				t.Fatalf("expected 1 event, got %d", len(got))
			}
			if got[0].Kind != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, got[0].Kind)
			}
			if got[0].Source != "clip" {
				t.Errorf("expected source clip, got %q", got[0].Source)
			}
			if !errors.Is(got[0].Err, tt.err) {
				t.Errorf("expected err %v, got %v", tt.err, got[0].Err)
			}
			if b.queued {
				t.Error("expected clip to be dequeued")
			}
		})
	}
}

func TestEnded_StaleStreamerIgnored(t *testing.T) {
	b := NewBeep(zerolog.Nop())
	b.streamer = &drainedStreamer{}

	var calls int
	b.Listen(func(player.Event) { calls++ })

	b.ended("old", &drainedStreamer{})
	if calls != 0 {
		t.Errorf("expected no event for a replaced clip, got %d", calls)
	}
}
