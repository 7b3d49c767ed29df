package deck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/favorites"
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/player"
	"github.com/jfmyers9/encore/internal/store"
)

// nullResource accepts every call and never emits events.
type nullResource struct {
	mu      sync.Mutex
	playing bool
}

func (r *nullResource) Load(ctx context.Context, source string) error { return nil }
func (r *nullResource) Rewind()                                       {}
func (r *nullResource) Listen(func(player.Event))                     {}

func (r *nullResource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = true
	return nil
}

func (r *nullResource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
}

func (r *nullResource) isPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// immediate runs deferred starts synchronously.
func immediate(_ time.Duration, fn func()) func() {
	fn()
	return func() {}
}

type fakeCatalog struct {
	tracks map[string]music.Track
	calls  [][]string
}

func (c *fakeCatalog) Track(ctx context.Context, id string) (music.Track, error) {
	t, ok := c.tracks[id]
	if !ok {
		return music.Track{}, errors.New("not found")
	}
	return t, nil
}

func (c *fakeCatalog) Tracks(ctx context.Context, ids []string) ([]music.Track, error) {
	c.calls = append(c.calls, ids)
	var out []music.Track
	for _, id := range ids {
		if t, ok := c.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func track(id string) music.Track {
	return music.Track{ID: id, Name: "Track " + id, PreviewURL: "https://p.scdn.co/mp3-preview/" + id}
}

func newTestDeck(t *testing.T) (*Deck, *nullResource, *fakeCatalog) {
	t.Helper()

	res := &nullResource{}
	p := player.New(res, zerolog.Nop(), player.Options{Scheduler: immediate})
	f := favorites.New(store.New(store.NewMemoryBackend(), zerolog.Nop(), 0), "")
	cat := &fakeCatalog{tracks: map[string]music.Track{
		"a": track("a"),
		"b": track("b"),
		"c": track("c"),
	}}
	return New(p, f, cat, zerolog.Nop()), res, cat
}

func TestPlayTrack_NoPreview(t *testing.T) {
	d, _, _ := newTestDeck(t)

	err := d.PlayTrack(music.Track{ID: "x"})
	if !errors.Is(err, player.ErrNoPreviewAvailable) {
		t.Errorf("expected ErrNoPreviewAvailable, got %v", err)
	}
}

func TestToggleFavorite_RemovingCurrentStopsPlayback(t *testing.T) {
	d, res, _ := newTestDeck(t)

	d.ToggleFavorite(track("a"))
	if err := d.PlayTrack(track("a")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	if !d.Player().Snapshot().IsPlaying {
		t.Fatal("expected track to be playing")
	}

	if added := d.ToggleFavorite(track("a")); added {
		t.Fatal("expected toggle to remove")
	}

	snap := d.Player().Snapshot()
	if snap.IsPlaying || res.isPlaying() {
		t.Error("expected removing the playing favorite to stop playback")
	}
	if snap.State != player.StateStopped {
		t.Errorf("expected stopped, got %s", snap.State)
	}
}

func TestToggleFavorite_RemovingOtherKeepsPlaying(t *testing.T) {
	d, _, _ := newTestDeck(t)

	d.ToggleFavorite(track("a"))
	d.ToggleFavorite(track("b"))
	_ = d.PlayTrack(track("a"))

	d.ToggleFavorite(track("b"))

	if !d.Player().Snapshot().IsPlaying {
		t.Error("expected playback of another track to continue")
	}
}

func TestToggleFavorite_AddingKeepsPlaying(t *testing.T) {
	d, _, _ := newTestDeck(t)

	_ = d.PlayTrack(track("a"))
	if !d.ToggleFavorite(track("a")) {
		t.Fatal("expected toggle to add")
	}
	if !d.Player().Snapshot().IsPlaying {
		t.Error("expected adding a favorite not to affect playback")
	}
}

func TestPlayRef(t *testing.T) {
	d, _, _ := newTestDeck(t)

	got, err := d.PlayRef(context.Background(), "https://open.spotify.com/track/b?si=share")
	if err != nil {
		t.Fatalf("PlayRef: %v", err)
	}
	if got.ID != "b" {
		t.Errorf("expected b, got %s", got.ID)
	}
	if snap := d.Player().Snapshot(); snap.Track == nil || snap.Track.ID != "b" {
		t.Errorf("expected b to be current, got %+v", snap.Track)
	}

	if _, err := d.PlayRef(context.Background(), "spotify:album:xyz"); err == nil {
		t.Error("expected error for album reference")
	}
}

func TestSeed(t *testing.T) {
	d, _, cat := newTestDeck(t)
	d.ToggleFavorite(track("a"))

	added, err := d.Seed(context.Background(), []string{"a", "b", "unknown", "spotify:track:c"})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}

	if len(cat.calls) != 1 || len(cat.calls[0]) != 3 {
		t.Errorf("expected existing favorites not to be requested, got %v", cat.calls)
	}

	list := d.Favorites().List()
	want := []string{"a", "b", "c"}
	if len(list) != len(want) {
		t.Fatalf("expected %v, got %d tracks", want, len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("favorite %d: expected %s, got %s", i, id, list[i].ID)
		}
	}

	// Seeding again is a no-op
	added, err = d.Seed(context.Background(), []string{"a", "b", "c"})
	if err != nil || added != 0 {
		t.Errorf("expected no-op reseed, got %d, %v", added, err)
	}
	if len(cat.calls) != 1 {
		t.Error("expected no catalog request when nothing is missing")
	}
}
