package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ArtistService provides artist lookups.
type ArtistService struct {
	client *Client
}

// Get returns a single artist by id.
func (s *ArtistService) Get(ctx context.Context, id string) (*Artist, error) {
	if id == "" {
		return nil, fmt.Errorf("spotify: artist id is required")
	}

	var artist Artist
	if err := s.client.get(ctx, "/artists/"+url.PathEscape(id), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// GetSeveral returns the artists for the given ids, dropping unknown ids.
func (s *ArtistService) GetSeveral(ctx context.Context, ids []string) ([]Artist, error) {
	artists := make([]Artist, 0, len(ids))

	for _, batch := range chunk(ids, MaxIDsPerRequest) {
		query := url.Values{}
		query.Set("ids", strings.Join(batch, ","))

		var payload struct {
			Artists []*Artist `json:"artists"`
		}
		if err := s.client.get(ctx, "/artists", query, &payload); err != nil {
			return nil, err
		}

		for _, a := range payload.Artists {
			if a != nil {
				artists = append(artists, *a)
			}
		}
	}

	return artists, nil
}

// Albums returns the albums and singles of an artist.
//
// limit is clamped to [1, 50]; zero selects the API default of 20.
func (s *ArtistService) Albums(ctx context.Context, id string, limit int) ([]SimpleAlbum, error) {
	if id == "" {
		return nil, fmt.Errorf("spotify: artist id is required")
	}

	query := s.client.marketQuery()
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	query.Set("include_groups", "album,single")

	var page Paging[SimpleAlbum]
	if err := s.client.get(ctx, "/artists/"+url.PathEscape(id)+"/albums", query, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// clampLimit normalizes a page size to the range the API accepts.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 50:
		return 50
	default:
		return limit
	}
}
