package spotify

import (
	"context"
	"net/http"
	"testing"
)

func TestSearchService_Tracks(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("q") != "karma police" {
			t.Errorf("expected query 'karma police', got %q", q.Get("q"))
		}
		if q.Get("type") != "track" {
			t.Errorf("expected type track, got %q", q.Get("type"))
		}
		if q.Get("limit") != "50" {
			t.Errorf("expected clamped limit 50, got %q", q.Get("limit"))
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[
			{"id":"t1","name":"Karma Police"},
			{"id":"t2","name":"Karma Police - Live"}
		],"total":2,"limit":50,"offset":0}}`))
	})
	c := srv.client(t)

	tracks, err := c.Search().Tracks(context.Background(), "  karma police ", 500)
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != "t1" {
		t.Errorf("expected t1 first, got %s", tracks[0].ID)
	}
}

func TestSearchService_EmptyQuery(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty query should not reach the API")
	})
	c := srv.client(t)

	if _, err := c.Search().Tracks(context.Background(), "   ", 10); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestArtistService_Albums(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/artists/a1/albums" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if g := r.URL.Query().Get("include_groups"); g != "album,single" {
			t.Errorf("expected include_groups album,single, got %q", g)
		}
		if l := r.URL.Query().Get("limit"); l != "20" {
			t.Errorf("expected default limit 20, got %q", l)
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"al1","name":"Kid A","album_type":"album"}]}`))
	})
	c := srv.client(t)

	albums, err := c.Artists().Albums(context.Background(), "a1", 0)
	if err != nil {
		t.Fatalf("Albums: %v", err)
	}
	if len(albums) != 1 || albums[0].Name != "Kid A" {
		t.Errorf("unexpected albums %+v", albums)
	}
}
