package spotify

// Image is an artwork image in one of several resolutions.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs holds links to the Spotify web player.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Followers holds the follower count of an artist.
type Followers struct {
	Total int `json:"total"`
}

// SimpleArtist is the artist object embedded in tracks and albums.
type SimpleArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist is the full artist object.
type Artist struct {
	SimpleArtist
	Genres     []string  `json:"genres"`
	Images     []Image   `json:"images"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
}

// SimpleAlbum is the album object embedded in tracks and listings.
type SimpleAlbum struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	AlbumType    string         `json:"album_type"`
	ReleaseDate  string         `json:"release_date"`
	TotalTracks  int            `json:"total_tracks"`
	Images       []Image        `json:"images"`
	Artists      []SimpleArtist `json:"artists"`
	URI          string         `json:"uri"`
	ExternalURLs ExternalURLs   `json:"external_urls"`
}

// Album is the full album object.
type Album struct {
	SimpleAlbum
	Label      string              `json:"label"`
	Popularity int                 `json:"popularity"`
	Tracks     Paging[SimpleTrack] `json:"tracks"`
}

// SimpleTrack is the track object embedded in albums.
type SimpleTrack struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	PreviewURL   string         `json:"preview_url"`
	DurationMS   int            `json:"duration_ms"`
	TrackNumber  int            `json:"track_number"`
	Explicit     bool           `json:"explicit"`
	Artists      []SimpleArtist `json:"artists"`
	URI          string         `json:"uri"`
	ExternalURLs ExternalURLs   `json:"external_urls"`
}

// Track is the full track object.
type Track struct {
	SimpleTrack
	Album      SimpleAlbum `json:"album"`
	Popularity int         `json:"popularity"`
}

// Paging is a page of results.
type Paging[T any] struct {
	Items  []T    `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Next   string `json:"next"`
}
