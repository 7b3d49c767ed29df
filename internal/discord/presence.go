// Package discord mirrors the previewed track to Discord Rich Presence.
package discord

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/player"
)

// PreviewLength is the length of a catalog preview clip.
const PreviewLength = 30 * time.Second

type rpcClient interface {
	SetActivity(*Activity) error
	Close() error
}

// Presence manages Discord Rich Presence updates.
type Presence struct {
	appID   string
	logger  zerolog.Logger
	client  rpcClient
	connect func(string) (rpcClient, error)
	now     func() time.Time
	last    lastActivity
}

type lastActivity struct {
	trackID string
	playing bool
}

func New(appID string, logger zerolog.Logger) *Presence {
	return &Presence{
		appID:  appID,
		logger: logger.With().Str("component", "discord").Logger(),
		connect: func(appID string) (rpcClient, error) {
			return dialIPC(appID)
		},
		now: time.Now,
	}
}

// Follow mirrors c's playback until ctx is done. Only the newest
// snapshot is kept while Discord is busy.
func (p *Presence) Follow(ctx context.Context, c *player.Controller) {
	updates := make(chan player.Snapshot, 1)
	unsubscribe := c.Subscribe(func(s player.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	p.Run(ctx, updates)
}

// Run consumes snapshots and sets Discord Rich Presence.
// Connects lazily on the first playing track. If Discord isn't
// running, logs the error and retries on the next update.
func (p *Presence) Run(ctx context.Context, updates <-chan player.Snapshot) {
	defer p.close()
	for {
		select {
		case <-ctx.Done():
			p.clearActivity()
			return
		case s, ok := <-updates:
			if !ok {
				p.clearActivity()
				return
			}
			p.handleSnapshot(s)
		}
	}
}

func (p *Presence) handleSnapshot(s player.Snapshot) {
	switch {
	case s.State == player.StateLoading:
		// A start is in flight; keep whatever is shown until it resolves.
		return
	case s.State != player.StatePlaying || s.Track == nil:
		if p.last.playing {
			p.clearActivity()
			p.last = lastActivity{}
		}
		return
	}

	cur := lastActivity{trackID: s.Track.ID, playing: true}
	if cur == p.last {
		return
	}

	if err := p.ensureConnected(); err != nil {
		p.logger.Warn().Err(err).Msg("Discord not available")
		return
	}

	if err := p.client.SetActivity(activityFor(*s.Track, s.Progress, p.now())); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to set activity")
		p.close()
		return
	}
	p.last = cur
}

// activityFor builds the presence shown while a preview plays.
func activityFor(t music.Track, progress float64, now time.Time) *Activity {
	elapsed := time.Duration(progress / 100 * float64(PreviewLength))
	start := now.Add(-elapsed)

	a := &Activity{
		Type:    2, // Listening
		Name:    "encore",
		Details: t.Name,
		State:   "by " + t.ArtistNames(),
		Timestamps: &Timestamps{
			Start: start.Unix(),
			End:   start.Add(PreviewLength).Unix(),
		},
		Assets: &Assets{
			LargeImage: t.Album.ImageURL(),
			LargeText:  t.Album.Name,
			SmallImage: "encore",
			SmallText:  "preview",
		},
	}
	if t.ExternalURL != "" {
		a.Buttons = []Button{{Label: "Open in Spotify", URL: t.ExternalURL}}
	}
	return a
}

func (p *Presence) ensureConnected() error {
	if p.client != nil {
		return nil
	}
	client, err := p.connect(p.appID)
	if err != nil {
		return err
	}
	p.logger.Info().Msg("Connected to Discord")
	p.client = client
	return nil
}

func (p *Presence) clearActivity() {
	if p.client == nil {
		return
	}
	if err := p.client.SetActivity(nil); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to clear activity")
		p.close()
	}
}

func (p *Presence) close() {
	if p.client == nil {
		return
	}
	_ = p.client.Close()
	p.client = nil
	p.last = lastActivity{}
}
