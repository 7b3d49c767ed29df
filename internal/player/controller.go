// Package player controls preview playback through a single audio Resource.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/music"
)

// DefaultStartDelay separates assigning a new track from starting it.
const DefaultStartDelay = 100 * time.Millisecond

// Scheduler runs fn after d and returns a function that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// AfterFunc is the default Scheduler.
func AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Options configures a Controller.
type Options struct {
	StartDelay time.Duration // Zero selects DefaultStartDelay
	Scheduler  Scheduler     // Nil selects AfterFunc
}

// Controller owns playback of one track at a time.
//
// Every start is tagged with a generation number. Play of a new track and
// Stop bump the generation, so a start that was scheduled earlier becomes a
// no-op when it eventually runs: the last Play wins and Stop always wins.
type Controller struct {
	res      Resource
	logger   zerolog.Logger
	delay    time.Duration
	schedule Scheduler

	// loadMu serializes Load+Play on the resource
	loadMu sync.Mutex

	mu          sync.Mutex
	track       *music.Track
	state       State
	progress    float64
	source      string
	loaded      bool
	gen         uint64
	cancelLoad  context.CancelFunc
	cancelStart func()
	observers   map[int]func(Snapshot)
	nextID      int
	seq         uint64

	// Delivery state. Snapshots reach observers in seq order; a snapshot
	// that is older than one already delivered or queued is dropped.
	deliverMu  sync.Mutex
	delivering bool
	delivered  uint64
	pending    *Snapshot
	pendingSeq uint64
}

// New creates a Controller driving res. The caller keeps ownership of res.
func New(res Resource, logger zerolog.Logger, opts Options) *Controller {
	if opts.StartDelay <= 0 {
		opts.StartDelay = DefaultStartDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = AfterFunc
	}

	c := &Controller{
		res:       res,
		logger:    logger.With().Str("component", "player").Logger(),
		delay:     opts.StartDelay,
		schedule:  opts.Scheduler,
		observers: make(map[int]func(Snapshot)),
	}
	res.Listen(c.handleEvent)
	return c
}

// Play starts track, or toggles pause when track is already selected.
//
// Returns ErrNoPreviewAvailable if the track has no preview clip. Start
// failures are logged and leave the controller stopped.
func (c *Controller) Play(track music.Track) error {
	if !track.HasPreview() {
		return ErrNoPreviewAvailable
	}

	c.mu.Lock()
	if c.track != nil && c.track.ID == track.ID {
		if c.state == StateLoading {
			c.mu.Unlock()
			return nil
		}
		if c.loaded {
			c.toggleLocked()
			c.mu.Unlock()
			c.notify()
			return nil
		}
	}

	gen, ctx := c.selectLocked(track)
	source := c.source
	c.mu.Unlock()
	c.notify()

	cancel := c.schedule(c.delay, func() {
		c.start(ctx, gen, source)
	})

	c.mu.Lock()
	if c.gen == gen && c.state == StateLoading {
		c.cancelStart = cancel
	} else {
		cancel()
	}
	c.mu.Unlock()
	return nil
}

// Stop halts playback and rewinds, keeping the current track. Any start
// that has not completed yet is cancelled.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.gen++
	c.cancelPendingLocked()
	c.res.Pause()
	c.res.Rewind()

	c.progress = 0
	if c.track != nil {
		c.state = StateStopped
	} else {
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.notify()
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to be called after every state change. It returns
// a function that removes the registration.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Close stops playback and drops all observers.
func (c *Controller) Close() {
	c.Stop()

	c.mu.Lock()
	c.observers = make(map[int]func(Snapshot))
	c.mu.Unlock()
}

// toggleLocked flips between playing and paused for the loaded track.
func (c *Controller) toggleLocked() {
	if c.state == StatePlaying {
		c.res.Pause()
		c.state = StatePaused
		return
	}

	if err := c.res.Play(); err != nil {
		c.logger.Warn().Err(err).Str("track", c.track.ID).Msg("playback start failed")
		return
	}
	c.state = StatePlaying
}

// selectLocked makes track current and returns the generation and load
// context for its deferred start.
func (c *Controller) selectLocked(track music.Track) (uint64, context.Context) {
	c.res.Pause()
	c.cancelPendingLocked()

	c.gen++
	c.track = &track
	c.state = StateLoading
	c.progress = 0
	c.source = track.PreviewURL
	c.loaded = false

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelLoad = cancel

	c.logger.Debug().Str("track", track.ID).Uint64("generation", c.gen).Msg("start scheduled")
	return c.gen, ctx
}

// start loads source and begins playback if gen is still current.
func (c *Controller) start(ctx context.Context, gen uint64, source string) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if !c.isCurrent(gen) {
		return
	}

	err := c.res.Load(ctx, source)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	if err == nil {
		err = c.res.Play()
	}
	if err != nil {
		c.state = StateStopped
		c.loaded = false
		c.progress = 0
		c.cancelPendingLocked()
		c.mu.Unlock()

		if !errors.Is(err, context.Canceled) {
			c.logger.Warn().Err(err).Str("source", source).Msg("playback start failed")
		}
		c.notify()
		return
	}

	c.state = StatePlaying
	c.loaded = true
	c.progress = 0
	c.cancelPendingLocked()
	c.mu.Unlock()

	c.logger.Debug().Str("source", source).Msg("playback started")
	c.notify()
}

// handleEvent applies resource events for the current source.
func (c *Controller) handleEvent(ev Event) {
	c.mu.Lock()
	if ev.Source != c.source || !c.loaded {
		c.mu.Unlock()
		return
	}

	changed := false
	switch ev.Kind {
	case EventTimeUpdate:
		if c.state != StatePlaying || ev.Total <= 0 {
			break
		}
		p := clamp(float64(ev.Elapsed) / float64(ev.Total) * 100)
		if p != c.progress {
			c.progress = p
			changed = true
		}

	case EventEnded:
		if c.state != StatePlaying {
			break
		}
		c.res.Rewind()
		c.state = StateStopped
		c.progress = 0
		changed = true

	case EventError:
		c.logger.Error().Err(ev.Err).Str("source", ev.Source).Msg("playback error")
		c.loaded = false
		if c.state == StatePlaying {
			c.state = StateStopped
			c.progress = 0
			changed = true
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Controller) cancelPendingLocked() {
	if c.cancelStart != nil {
		c.cancelStart()
		c.cancelStart = nil
	}
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsPlaying: c.state == StatePlaying,
		Progress:  c.progress,
		State:     c.state,
	}
	if c.track != nil {
		t := *c.track
		snap.Track = &t
	}
	return snap
}

// notify publishes the current snapshot to every observer. Must be called
// without c.mu held.
//
// Only one goroutine delivers at a time. A notify that arrives during a
// delivery queues its snapshot and returns; the delivering goroutine picks
// up the newest queued snapshot before it finishes, so observers always end
// on the latest state.
func (c *Controller) notify() {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.deliverMu.Lock()
	if seq <= c.delivered || (c.pending != nil && seq <= c.pendingSeq) {
		c.deliverMu.Unlock()
		return
	}
	c.pending, c.pendingSeq = &snap, seq
	if c.delivering {
		c.deliverMu.Unlock()
		return
	}
	c.delivering = true

	for c.pending != nil {
		next := *c.pending
		c.delivered = c.pendingSeq
		c.pending = nil
		c.deliverMu.Unlock()

		for _, fn := range c.observerList() {
			fn(next)
		}

		c.deliverMu.Lock()
	}
	c.delivering = false
	c.deliverMu.Unlock()
}

func (c *Controller) observerList() []func(Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	return fns
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
