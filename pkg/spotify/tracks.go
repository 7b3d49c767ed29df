package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// MaxIDsPerRequest is the maximum number of ids accepted by the batch
// track and artist endpoints.
const MaxIDsPerRequest = 50

// TrackService provides track lookups.
type TrackService struct {
	client *Client
}

// Get returns a single track by id.
func (s *TrackService) Get(ctx context.Context, id string) (*Track, error) {
	if id == "" {
		return nil, fmt.Errorf("spotify: track id is required")
	}

	var track Track
	if err := s.client.get(ctx, "/tracks/"+url.PathEscape(id), s.client.marketQuery(), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// GetSeveral returns the tracks for the given ids, in request order.
//
// Requests are split into batches of MaxIDsPerRequest. Ids Spotify does not
// know are returned as null by the API and are dropped from the result.
func (s *TrackService) GetSeveral(ctx context.Context, ids []string) ([]Track, error) {
	tracks := make([]Track, 0, len(ids))

	for _, batch := range chunk(ids, MaxIDsPerRequest) {
		query := s.client.marketQuery()
		query.Set("ids", strings.Join(batch, ","))

		var payload struct {
			Tracks []*Track `json:"tracks"`
		}
		if err := s.client.get(ctx, "/tracks", query, &payload); err != nil {
			return nil, err
		}

		for _, t := range payload.Tracks {
			if t != nil {
				tracks = append(tracks, *t)
			}
		}
	}

	return tracks, nil
}

// chunk splits ids into slices of at most size elements, skipping blanks.
func chunk(ids []string, size int) [][]string {
	var batches [][]string
	var current []string

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		current = append(current, id)
		if len(current) == size {
			batches = append(batches, current)
			current = nil
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}
