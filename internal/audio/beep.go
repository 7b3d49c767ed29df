// Package audio renders preview clips on the local sound device.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/player"
)

// tickInterval is how often time updates are emitted while playing.
const tickInterval = 250 * time.Millisecond

// ErrNotLoaded is returned by Play before any clip was loaded.
var ErrNotLoaded = errors.New("audio: no clip loaded")

// Beep is a player.Resource backed by the beep speaker.
//
// Clips are downloaded completely before decoding, so they can be rewound
// without another request.
type Beep struct {
	client   *http.Client
	maxBytes int64
	logger   zerolog.Logger

	mu          sync.Mutex
	listener    func(player.Event)
	source      string
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	queued      bool
	initialized bool
	sampleRate  beep.SampleRate
	stopMonitor context.CancelFunc
}

// NewBeep creates a Beep resource. The speaker is initialised on first Play.
func NewBeep(logger zerolog.Logger) *Beep {
	return &Beep{
		client:   newHTTPClient(),
		maxBytes: DefaultMaxClipBytes,
		logger:   logger.With().Str("component", "audio").Logger(),
	}
}

// Listen registers the event callback.
func (b *Beep) Listen(fn func(player.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = fn
}

// Load downloads and decodes source, replacing the current clip. The new
// clip is paused at its start.
func (b *Beep) Load(ctx context.Context, source string) error {
	data, err := fetchClip(ctx, b.client, source, b.maxBytes)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(clip{Reader: bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("failed to decode mp3: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = streamer.Close()
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	b.source = source
	b.streamer = streamer
	b.format = format
	b.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}

	b.logger.Debug().
		Str("source", source).
		Int("sample_rate", int(format.SampleRate)).
		Dur("length", format.SampleRate.D(streamer.Len())).
		Msg("clip loaded")
	return nil
}

// Play starts or resumes the loaded clip.
func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return ErrNotLoaded
	}

	if !b.initialized {
		if err := speaker.Init(b.format.SampleRate, b.format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		b.initialized = true
		b.sampleRate = b.format.SampleRate
	}

	if !b.queued {
		var s beep.Streamer = b.ctrl
		if b.format.SampleRate != b.sampleRate {
			s = beep.Resample(4, b.format.SampleRate, b.sampleRate, b.ctrl)
		}

		source, streamer := b.source, b.streamer
		speaker.Play(beep.Seq(s, beep.Callback(func() {
			// Runs with the speaker locked
			go b.ended(source, streamer)
		})))
		b.queued = true
	}

	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()

	if b.stopMonitor == nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.stopMonitor = cancel
		go b.monitor(ctx)
	}
	return nil
}

// Pause halts the clip, keeping the position.
func (b *Beep) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
}

// Rewind moves the clip back to its start.
func (b *Beep) Rewind() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return
	}
	speaker.Lock()
	err := b.streamer.Seek(0)
	speaker.Unlock()

	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to rewind clip")
	}
}

// Close stops playback and releases the clip.
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	return nil
}

// releaseLocked drops the current clip from the speaker.
func (b *Beep) releaseLocked() {
	if b.stopMonitor != nil {
		b.stopMonitor()
		b.stopMonitor = nil
	}
	if b.queued {
		speaker.Clear()
		b.queued = false
	}
	if b.streamer != nil {
		_ = b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	b.source = ""
}

// ended is called once the speaker has drained the clip. A decoder that
// stopped early reports an error instead of a normal end.
func (b *Beep) ended(source string, streamer beep.StreamSeekCloser) {
	b.mu.Lock()
	if b.streamer != streamer {
		b.mu.Unlock()
		return
	}
	b.queued = false
	listener := b.listener
	err := streamer.Err()
	b.mu.Unlock()

	ev := player.Event{Kind: player.EventEnded, Source: source}
	if err != nil {
		b.logger.Warn().Err(err).Str("source", source).Msg("clip decode failed")
		ev = player.Event{Kind: player.EventError, Source: source, Err: err}
	}
	if listener != nil {
		listener(ev)
	}
}

// monitor emits time updates while the clip plays.
func (b *Beep) monitor(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		b.mu.Lock()
		if b.streamer == nil || !b.queued {
			b.mu.Unlock()
			continue
		}
		speaker.Lock()
		paused := b.ctrl.Paused
		pos := b.streamer.Position()
		total := b.streamer.Len()
		speaker.Unlock()
		ev := player.Event{
			Kind:    player.EventTimeUpdate,
			Source:  b.source,
			Elapsed: b.format.SampleRate.D(pos),
			Total:   b.format.SampleRate.D(total),
		}
		listener := b.listener
		b.mu.Unlock()

		if !paused && listener != nil {
			listener(ev)
		}
	}
}
