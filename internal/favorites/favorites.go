// Package favorites keeps the user's curated list of favorite tracks.
package favorites

import (
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/store"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "spotify-favorites"

// Favorites is an ordered list of tracks, unique by id, persisted in a
// store.Store. Insertion order is preserved.
type Favorites struct {
	value *store.Value[[]music.Track]
}

// New returns the favorites list stored under key in s.
func New(s *store.Store, key string) *Favorites {
	if key == "" {
		key = DefaultKey
	}
	return &Favorites{value: store.NewValue(s, key, []music.Track{})}
}

// List returns the favorites in insertion order.
func (f *Favorites) List() []music.Track {
	return dedupe(f.value.Get())
}

// IsFavorite reports whether the track with id is in the list.
func (f *Favorites) IsFavorite(id string) bool {
	return indexOf(f.value.Get(), id) >= 0
}

// Toggle removes track if it is a favorite, otherwise appends it. It
// reports whether the track was added.
func (f *Favorites) Toggle(track music.Track) bool {
	var added bool
	f.value.Update(func(tracks []music.Track) []music.Track {
		tracks = dedupe(tracks)
		if i := indexOf(tracks, track.ID); i >= 0 {
			added = false
			return append(tracks[:i], tracks[i+1:]...)
		}
		added = true
		return append(tracks, track)
	})
	return added
}

// Add appends tracks that are not yet favorites and returns how many were
// added.
func (f *Favorites) Add(tracks ...music.Track) int {
	var added int
	f.value.Update(func(current []music.Track) []music.Track {
		current = dedupe(current)
		for _, t := range tracks {
			if t.ID == "" || indexOf(current, t.ID) >= 0 {
				continue
			}
			current = append(current, t)
			added++
		}
		return current
	})
	return added
}

// Remove drops the track with id and reports whether it was present.
func (f *Favorites) Remove(id string) bool {
	var removed bool
	f.value.Update(func(tracks []music.Track) []music.Track {
		tracks = dedupe(tracks)
		if i := indexOf(tracks, id); i >= 0 {
			removed = true
			return append(tracks[:i], tracks[i+1:]...)
		}
		return tracks
	})
	return removed
}

// Replace overwrites the list. Duplicate ids keep their first occurrence.
func (f *Favorites) Replace(tracks []music.Track) {
	f.value.Set(dedupe(tracks))
}

// Subscribe calls fn with the new list after every change.
func (f *Favorites) Subscribe(fn func([]music.Track)) func() {
	return f.value.Subscribe(func(tracks []music.Track) {
		fn(dedupe(tracks))
	})
}

func indexOf(tracks []music.Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// dedupe drops later tracks whose id was already seen.
func dedupe(tracks []music.Track) []music.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]music.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
