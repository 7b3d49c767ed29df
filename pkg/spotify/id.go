package spotify

import (
	"net/url"
	"strings"
)

// Resource kinds accepted by ExtractID.
const (
	KindTrack  = "track"
	KindAlbum  = "album"
	KindArtist = "artist"
)

// ExtractID returns the id of a Spotify resource of the given kind.
//
// Accepted forms:
//   - a bare id: 7HKRWMTErKh56EIBeFcmdf
//   - a URI: spotify:track:7HKRWMTErKh56EIBeFcmdf
//   - a URL: https://open.spotify.com/track/7HKRWMTErKh56EIBeFcmdf?si=...
//
// Returns an empty string when ref does not reference a resource of kind.
func ExtractID(ref, kind string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(ref, "spotify:"+kind+":"); ok {
		return trimID(rest)
	}
	if strings.HasPrefix(ref, "spotify:") {
		return ""
	}

	if !strings.ContainsAny(ref, ":/?#") {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := range len(parts) {
		if parts[i] == kind && i+1 < len(parts) {
			return trimID(parts[i+1])
		}
	}

	return ""
}

// trimID cuts an id at the first path, query or fragment separator.
func trimID(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
