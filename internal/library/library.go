// Package library holds the curated catalog of artists, albums and tracks
// shown by encore.
package library

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Library is an ordered list of curated artists.
type Library struct {
	Artists []Artist `yaml:"artists"`
}

// Artist is a curated artist and the albums picked for it.
type Artist struct {
	Name   string  `yaml:"name"`
	ID     string  `yaml:"id"`
	Genre  string  `yaml:"genre"`
	Albums []Album `yaml:"albums"`
}

// Album is a curated album and the track ids picked from it.
type Album struct {
	Name   string   `yaml:"name"`
	ID     string   `yaml:"id"`
	Tracks []string `yaml:"tracks"`
}

// AlbumRef locates an album within the library.
type AlbumRef struct {
	ArtistName string
	Album      Album
}

// TrackRef locates a track within the library.
type TrackRef struct {
	ID         string
	ArtistName string
	AlbumName  string
	Album      Album
}

// Default returns the built-in library.
func Default() *Library {
	lib, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("library: invalid built-in library: %v", err))
	}
	return lib
}

// Load reads a library file. A missing or empty file yields the built-in
// library.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	if len(data) == 0 {
		return Default(), nil
	}
	return Parse(data)
}

// Parse decodes a library from YAML.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}
	return &lib, nil
}

// Genres returns the distinct genres, sorted.
func (l *Library) Genres() []string {
	seen := make(map[string]bool)
	var genres []string
	for _, a := range l.Artists {
		if a.Genre != "" && !seen[a.Genre] {
			seen[a.Genre] = true
			genres = append(genres, a.Genre)
		}
	}
	sort.Strings(genres)
	return genres
}

// ByGenre returns the artists of genre in declaration order. An empty genre
// returns every artist.
func (l *Library) ByGenre(genre string) []Artist {
	if genre == "" {
		return l.Artists
	}
	var artists []Artist
	for _, a := range l.Artists {
		if a.Genre == genre {
			artists = append(artists, a)
		}
	}
	return artists
}

// ArtistByID returns the artist with id.
func (l *Library) ArtistByID(id string) (Artist, bool) {
	for _, a := range l.Artists {
		if a.ID == id {
			return a, true
		}
	}
	return Artist{}, false
}

// AlbumByID returns the album with id and its artist's name.
func (l *Library) AlbumByID(id string) (AlbumRef, bool) {
	for _, a := range l.Artists {
		for _, al := range a.Albums {
			if al.ID == id {
				return AlbumRef{ArtistName: a.Name, Album: al}, true
			}
		}
	}
	return AlbumRef{}, false
}

// TrackByID returns where the track with id is listed.
func (l *Library) TrackByID(id string) (TrackRef, bool) {
	for _, a := range l.Artists {
		for _, al := range a.Albums {
			for _, t := range al.Tracks {
				if t == id {
					return TrackRef{ID: id, ArtistName: a.Name, AlbumName: al.Name, Album: al}, true
				}
			}
		}
	}
	return TrackRef{}, false
}

// TrackIDs returns every track id in declaration order, without duplicates.
func (l *Library) TrackIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range l.Artists {
		for _, al := range a.Albums {
			for _, t := range al.Tracks {
				if !seen[t] {
					seen[t] = true
					ids = append(ids, t)
				}
			}
		}
	}
	return ids
}
