package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/player"
)

type fakeRPC struct {
	mu         sync.Mutex
	activities []*Activity
	closed     bool
	failNext   error
}

func (f *fakeRPC) SetActivity(a *Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeRPC) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRPC) sent() []*Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Activity(nil), f.activities...)
}

func newTestPresence() (*Presence, *fakeRPC) {
	fake := &fakeRPC{}
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			return fake, nil
		},
		now: time.Now,
	}
	return p, fake
}

func testTrack(id, name string) *music.Track {
	return &music.Track{
		ID:         id,
		Name:       name,
		PreviewURL: "https://p.scdn.co/mp3-preview/" + id,
		Artists:    []music.Artist{{Name: "Slipknot"}},
		Album: music.Album{
			Name:   "Iowa",
			Images: []music.Image{{URL: "https://i.scdn.co/image/iowa", Width: 640, Height: 640}},
		},
	}
}

func playing(t *music.Track, progress float64) player.Snapshot {
	return player.Snapshot{Track: t, IsPlaying: true, Progress: progress, State: player.StatePlaying}
}

func TestDedup_SkipsDuplicateUpdates(t *testing.T) {
	p, fake := newTestPresence()
	track := testTrack("1", "Disasterpiece")

	p.handleSnapshot(playing(track, 0))
	p.handleSnapshot(playing(track, 40))

	if n := len(fake.sent()); n != 1 {
		t.Fatalf("expected 1 SetActivity call, got %d", n)
	}
}

func TestDedup_SendsOnTrackChange(t *testing.T) {
	p, fake := newTestPresence()

	p.handleSnapshot(playing(testTrack("1", "Disasterpiece"), 0))
	p.handleSnapshot(playing(testTrack("2", "My Plague"), 0))

	sent := fake.sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(sent))
	}
	if sent[0].Details != "Disasterpiece" || sent[1].Details != "My Plague" {
		t.Errorf("details = %q, %q", sent[0].Details, sent[1].Details)
	}
}

func TestClearsWhenNotPlaying(t *testing.T) {
	tests := []struct {
		name  string
		state player.State
	}{
		{"paused", player.StatePaused},
		{"stopped", player.StateStopped},
		{"idle", player.StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fake := newTestPresence()
			track := testTrack("1", "Disasterpiece")

			p.handleSnapshot(playing(track, 0))
			p.handleSnapshot(player.Snapshot{Track: track, State: tt.state})

			sent := fake.sent()
			if len(sent) != 2 {
				t.Fatalf("expected 2 SetActivity calls, got %d", len(sent))
			}
			if sent[1] != nil {
				t.Errorf("expected nil activity to clear presence, got %+v", sent[1])
			}
		})
	}
}

func TestLoadingKeepsPresence(t *testing.T) {
	p, fake := newTestPresence()

	p.handleSnapshot(playing(testTrack("1", "Disasterpiece"), 0))
	p.handleSnapshot(player.Snapshot{Track: testTrack("2", "My Plague"), State: player.StateLoading})

	if n := len(fake.sent()); n != 1 {
		t.Fatalf("expected loading to leave presence alone, got %d calls", n)
	}
}

func TestNoClearWhenAlreadyStopped(t *testing.T) {
	p, fake := newTestPresence()

	// Never played, so nothing to clear
	p.handleSnapshot(player.Snapshot{State: player.StateIdle})
	p.handleSnapshot(player.Snapshot{Track: testTrack("1", "x"), State: player.StatePaused})

	if n := len(fake.sent()); n != 0 {
		t.Fatalf("expected 0 SetActivity calls, got %d", n)
	}
}

func TestConnectFailureRetriesNextUpdate(t *testing.T) {
	fake := &fakeRPC{}
	attempts := 0
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("no discord socket found")
			}
			return fake, nil
		},
		now: time.Now,
	}
	track := testTrack("1", "Disasterpiece")

	p.handleSnapshot(playing(track, 0))
	p.handleSnapshot(playing(track, 10))

	if attempts != 2 {
		t.Fatalf("expected 2 connect attempts, got %d", attempts)
	}
	if n := len(fake.sent()); n != 1 {
		t.Fatalf("expected 1 activity after reconnect, got %d", n)
	}
}

func TestReconnectsAfterError(t *testing.T) {
	connectCount := 0
	fake := &fakeRPC{}
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			connectCount++
			fake = &fakeRPC{}
			return fake, nil
		},
		now: time.Now,
	}
	track := testTrack("1", "Disasterpiece")

	p.handleSnapshot(playing(track, 0))
	if connectCount != 1 {
		t.Fatalf("expected 1 connect, got %d", connectCount)
	}

	// Next track fails to send, which drops the connection
	fake.failNext = errors.New("broken pipe")
	p.handleSnapshot(playing(testTrack("2", "My Plague"), 0))
	if !fake.closed {
		t.Error("expected failed client to be closed")
	}

	p.handleSnapshot(playing(testTrack("2", "My Plague"), 0))
	if connectCount != 2 {
		t.Fatalf("expected 2 connects after error, got %d", connectCount)
	}
}

func TestActivityFields(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	track := testTrack("1", "Disasterpiece")
	track.Artists = append(track.Artists, music.Artist{Name: "Corey Taylor"})
	track.ExternalURL = "https://open.spotify.com/track/1"

	a := activityFor(*track, 50, now)

	if a.Type != 2 {
		t.Errorf("type = %d, want 2 (Listening)", a.Type)
	}
	if a.Details != "Disasterpiece" {
		t.Errorf("details = %q", a.Details)
	}
	if a.State != "by Slipknot, Corey Taylor" {
		t.Errorf("state = %q", a.State)
	}
	if a.Assets == nil || a.Assets.LargeImage != "https://i.scdn.co/image/iowa" || a.Assets.LargeText != "Iowa" {
		t.Errorf("unexpected assets %+v", a.Assets)
	}
	if a.Timestamps == nil {
		t.Fatal("expected timestamps")
	}
	if a.Timestamps.Start != now.Unix()-15 || a.Timestamps.End != now.Unix()+15 {
		t.Errorf("timestamps = %+v, want start -15s and end +15s", a.Timestamps)
	}
	if len(a.Buttons) != 1 || a.Buttons[0].URL != track.ExternalURL {
		t.Errorf("buttons = %+v", a.Buttons)
	}
}

func TestActivityPlaceholderArtwork(t *testing.T) {
	track := testTrack("1", "Disasterpiece")
	track.Album.Images = nil

	a := activityFor(*track, 0, time.Now())
	if a.Assets.LargeImage != music.Placeholder("Iowa") {
		t.Errorf("large_image = %q, want placeholder", a.Assets.LargeImage)
	}
	if a.Buttons != nil {
		t.Errorf("expected no buttons without an external url, got %+v", a.Buttons)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p, fake := newTestPresence()
	// Pre-connect so close is observable
	p.client = fake

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan player.Snapshot, 1)
	done := make(chan struct{})

	go func() {
		p.Run(ctx, updates)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if !fake.closed {
		t.Error("expected client to be closed on context cancel")
	}
}

type silentResource struct{}

func (silentResource) Load(context.Context, string) error { return nil }
func (silentResource) Play() error                        { return nil }
func (silentResource) Pause()                             {}
func (silentResource) Rewind()                            {}
func (silentResource) Listen(func(player.Event))          {}

func TestFollowMirrorsController(t *testing.T) {
	c := player.New(silentResource{}, zerolog.Nop(), player.Options{
		Scheduler: func(_ time.Duration, fn func()) func() {
			fn()
			return func() {}
		},
	})
	defer c.Close()

	p, fake := newTestPresence()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Follow(ctx, c)
		close(done)
	}()

	track := testTrack("1", "Disasterpiece")
	deadline := time.Now().Add(2 * time.Second)
	for len(fake.sent()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("presence never followed playback")
		}
		// Replay until the subscription is in place
		c.Stop()
		if err := c.Play(*track); err != nil {
			t.Fatalf("Play: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done

	if got := fake.sent()[0]; got == nil || got.Details != "Disasterpiece" {
		t.Errorf("first activity = %+v", got)
	}
}
