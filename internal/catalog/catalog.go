// Package catalog maps the Spotify Web API onto the music record types used
// by the rest of encore.
package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/pkg/spotify"
)

// Catalog looks up tracks, artists and albums.
type Catalog struct {
	client *spotify.Client
	logger zerolog.Logger
}

// New creates a Catalog backed by client.
func New(client *spotify.Client, logger zerolog.Logger) *Catalog {
	return &Catalog{
		client: client,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Track returns a single track.
func (c *Catalog) Track(ctx context.Context, id string) (music.Track, error) {
	t, err := c.client.Tracks().Get(ctx, id)
	if err != nil {
		return music.Track{}, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return convertTrack(*t), nil
}

// Tracks returns the tracks for ids in order. Unknown ids are skipped.
func (c *Catalog) Tracks(ctx context.Context, ids []string) ([]music.Track, error) {
	raw, err := c.client.Tracks().GetSeveral(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks: %w", err)
	}

	tracks := make([]music.Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, convertTrack(t))
	}

	if len(tracks) < len(ids) {
		c.logger.Debug().
			Int("requested", len(ids)).
			Int("found", len(tracks)).
			Msg("some track ids were not found")
	}
	return tracks, nil
}

// Search returns tracks matching query.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]music.Track, error) {
	raw, err := c.client.Search().Tracks(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	tracks := make([]music.Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// Artist returns a full artist record.
func (c *Catalog) Artist(ctx context.Context, id string) (music.Artist, error) {
	a, err := c.client.Artists().Get(ctx, id)
	if err != nil {
		return music.Artist{}, fmt.Errorf("failed to get artist %s: %w", id, err)
	}
	return convertArtist(*a), nil
}

// Artists returns full artist records for ids. Unknown ids are skipped.
func (c *Catalog) Artists(ctx context.Context, ids []string) ([]music.Artist, error) {
	raw, err := c.client.Artists().GetSeveral(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get artists: %w", err)
	}

	artists := make([]music.Artist, 0, len(raw))
	for _, a := range raw {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// ArtistAlbums returns the albums and singles of an artist.
func (c *Catalog) ArtistAlbums(ctx context.Context, id string, limit int) ([]music.Album, error) {
	raw, err := c.client.Artists().Albums(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get albums for artist %s: %w", id, err)
	}

	albums := make([]music.Album, 0, len(raw))
	for _, a := range raw {
		albums = append(albums, convertAlbum(a))
	}
	return albums, nil
}

// Album returns an album and its tracks. Album tracks carry the album
// itself since the API omits it from the embedded track objects.
func (c *Catalog) Album(ctx context.Context, id string) (music.Album, []music.Track, error) {
	a, err := c.client.Albums().Get(ctx, id)
	if err != nil {
		return music.Album{}, nil, fmt.Errorf("failed to get album %s: %w", id, err)
	}

	album := convertAlbum(a.SimpleAlbum)
	tracks := make([]music.Track, 0, len(a.Tracks.Items))
	for _, st := range a.Tracks.Items {
		t := convertSimpleTrack(st)
		t.Album = album
		tracks = append(tracks, t)
	}
	return album, tracks, nil
}

func convertTrack(t spotify.Track) music.Track {
	track := convertSimpleTrack(t.SimpleTrack)
	track.Album = convertAlbum(t.Album)
	track.Popularity = t.Popularity
	return track
}

func convertSimpleTrack(t spotify.SimpleTrack) music.Track {
	artists := make([]music.Artist, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, music.Artist{ID: a.ID, Name: a.Name})
	}

	return music.Track{
		ID:          t.ID,
		Name:        t.Name,
		PreviewURL:  t.PreviewURL,
		DurationMS:  t.DurationMS,
		Artists:     artists,
		ExternalURL: t.ExternalURLs.Spotify,
	}
}

func convertAlbum(a spotify.SimpleAlbum) music.Album {
	return music.Album{
		ID:          a.ID,
		Name:        a.Name,
		ReleaseDate: a.ReleaseDate,
		Images:      convertImages(a.Images),
	}
}

func convertArtist(a spotify.Artist) music.Artist {
	return music.Artist{
		ID:        a.ID,
		Name:      a.Name,
		Genres:    a.Genres,
		Images:    convertImages(a.Images),
		Followers: a.Followers.Total,
	}
}

func convertImages(images []spotify.Image) []music.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]music.Image, 0, len(images))
	for _, img := range images {
		out = append(out, music.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return out
}
