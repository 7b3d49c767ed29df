package music

import (
	"net/url"
	"strings"
	"time"
)

// Track is a catalog track with the metadata needed to render and play it.
//
// JSON and YAML field names follow the Spotify Web API so persisted and
// exported favorites stay readable by other tools.
type Track struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	PreviewURL  string   `json:"preview_url" yaml:"preview_url"`
	DurationMS  int      `json:"duration_ms" yaml:"duration_ms"`
	Artists     []Artist `json:"artists" yaml:"artists"`
	Album       Album    `json:"album" yaml:"album"`
	ExternalURL string   `json:"external_url,omitempty" yaml:"external_url,omitempty"`
	Popularity  int      `json:"popularity,omitempty" yaml:"popularity,omitempty"`
}

// HasPreview reports whether the track carries a playable preview clip.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// Duration returns the full track length.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// ArtistNames returns the artist names joined for display.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Album is an album as embedded in tracks and artist listings.
type Album struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	ReleaseDate string  `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Images      []Image `json:"images,omitempty" yaml:"images,omitempty"`
}

// Year returns the release year, or "" when unknown.
func (a Album) Year() string {
	if len(a.ReleaseDate) < 4 {
		return ""
	}
	return a.ReleaseDate[:4]
}

// ImageURL returns the album artwork, falling back to a placeholder.
func (a Album) ImageURL() string {
	return imageURL(a.Images, a.Name)
}

// Artist is a catalog artist. Genres, Images and Followers are only filled
// in by full artist lookups.
type Artist struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Genres    []string `json:"genres,omitempty" yaml:"genres,omitempty"`
	Images    []Image  `json:"images,omitempty" yaml:"images,omitempty"`
	Followers int      `json:"followers,omitempty" yaml:"followers,omitempty"`
}

// ImageURL returns the artist picture, falling back to a placeholder.
func (a Artist) ImageURL() string {
	return imageURL(a.Images, a.Name)
}

// Image is one resolution of an artwork image.
type Image struct {
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// PlaceholderBase is the image service used when an item has no artwork.
const PlaceholderBase = "https://placehold.co/640x640/1db954/ffffff"

// Placeholder returns a generated artwork URL labelled with name.
func Placeholder(name string) string {
	if name == "" {
		return PlaceholderBase
	}
	return PlaceholderBase + "?text=" + url.QueryEscape(name)
}

// imageURL picks the widest usable image, then narrower ones, then a
// placeholder.
func imageURL(images []Image, name string) string {
	best := -1
	for i, img := range images {
		if img.URL == "" {
			continue
		}
		if best < 0 || img.Width > images[best].Width {
			best = i
		}
	}
	if best < 0 {
		return Placeholder(name)
	}
	return images[best].URL
}
