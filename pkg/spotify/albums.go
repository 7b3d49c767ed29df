package spotify

import (
	"context"
	"fmt"
	"net/url"
)

// AlbumService provides album lookups.
type AlbumService struct {
	client *Client
}

// Get returns a single album, including its first page of tracks.
func (s *AlbumService) Get(ctx context.Context, id string) (*Album, error) {
	if id == "" {
		return nil, fmt.Errorf("spotify: album id is required")
	}

	var album Album
	if err := s.client.get(ctx, "/albums/"+url.PathEscape(id), s.client.marketQuery(), &album); err != nil {
		return nil, err
	}
	return &album, nil
}
