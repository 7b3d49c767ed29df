package spotify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// SearchService provides catalog search.
type SearchService struct {
	client *Client
}

// Tracks searches the catalog for tracks matching query.
//
// limit is clamped to [1, 50]; zero selects 20.
func (s *SearchService) Tracks(ctx context.Context, query string, limit int) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("spotify: search query is required")
	}

	params := s.client.marketQuery()
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var payload struct {
		Tracks Paging[Track] `json:"tracks"`
	}
	if err := s.client.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}
	return payload.Tracks.Items, nil
}
