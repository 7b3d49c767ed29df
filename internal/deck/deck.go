// Package deck ties the preview player to the favorites list.
package deck

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/favorites"
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/player"
	"github.com/jfmyers9/encore/pkg/spotify"
)

// Catalog resolves track ids to tracks.
type Catalog interface {
	Track(ctx context.Context, id string) (music.Track, error)
	Tracks(ctx context.Context, ids []string) ([]music.Track, error)
}

// Deck coordinates playback and favorites. Neither side knows about the
// other; policies that span both live here.
type Deck struct {
	player    *player.Controller
	favorites *favorites.Favorites
	catalog   Catalog
	logger    zerolog.Logger
}

// New creates a Deck. catalog may be nil when no lookups are needed.
func New(p *player.Controller, f *favorites.Favorites, catalog Catalog, logger zerolog.Logger) *Deck {
	return &Deck{
		player:    p,
		favorites: f,
		catalog:   catalog,
		logger:    logger.With().Str("component", "deck").Logger(),
	}
}

// Player returns the playback controller.
func (d *Deck) Player() *player.Controller {
	return d.player
}

// Favorites returns the favorites list.
func (d *Deck) Favorites() *favorites.Favorites {
	return d.favorites
}

// PlayTrack plays or toggles track. It returns player.ErrNoPreviewAvailable
// for tracks without a preview clip.
func (d *Deck) PlayTrack(track music.Track) error {
	if err := d.player.Play(track); err != nil {
		d.logger.Info().Str("track", track.ID).Err(err).Msg("cannot play track")
		return err
	}
	return nil
}

// PlayRef looks up a track id, URI or URL and plays it.
func (d *Deck) PlayRef(ctx context.Context, ref string) (music.Track, error) {
	track, err := d.Lookup(ctx, ref)
	if err != nil {
		return music.Track{}, err
	}
	return track, d.PlayTrack(track)
}

// Lookup resolves a track id, URI or URL.
func (d *Deck) Lookup(ctx context.Context, ref string) (music.Track, error) {
	id := spotify.ExtractID(ref, spotify.KindTrack)
	if id == "" {
		return music.Track{}, fmt.Errorf("not a track reference: %q", ref)
	}
	if d.catalog == nil {
		return music.Track{}, fmt.Errorf("no catalog configured")
	}
	return d.catalog.Track(ctx, id)
}

// ToggleFavorite adds or removes track from the favorites. Removing the
// track that is currently selected in the player stops playback. It
// reports whether the track was added.
func (d *Deck) ToggleFavorite(track music.Track) bool {
	added := d.favorites.Toggle(track)
	if added {
		return true
	}

	snap := d.player.Snapshot()
	if snap.Track != nil && snap.Track.ID == track.ID && snap.State != player.StateStopped {
		d.logger.Debug().Str("track", track.ID).Msg("stopping removed favorite")
		d.player.Stop()
	}
	return false
}

// Seed appends the tracks for ids that are not yet favorites. Ids the
// catalog does not know are skipped. It returns the number of tracks added.
func (d *Deck) Seed(ctx context.Context, ids []string) (int, error) {
	var missing []string
	for _, ref := range ids {
		id := spotify.ExtractID(ref, spotify.KindTrack)
		if id != "" && !d.favorites.IsFavorite(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if d.catalog == nil {
		return 0, fmt.Errorf("no catalog configured")
	}

	tracks, err := d.catalog.Tracks(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve default favorites: %w", err)
	}

	added := d.favorites.Add(tracks...)
	d.logger.Info().
		Int("requested", len(missing)).
		Int("added", added).
		Msg("seeded favorites")
	return added, nil
}

// Close stops playback.
func (d *Deck) Close() {
	d.player.Close()
}
