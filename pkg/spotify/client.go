// Package spotify provides a client for the Spotify Web API catalog endpoints.
//
// The client authenticates with the client-credentials grant and caches the
// resulting access token until shortly before it expires. It covers the
// read-only catalog surface: tracks, artists, albums and track search.
//
// Example usage:
//
//	import "github.com/jfmyers9/encore/pkg/spotify"
//
//	client, err := spotify.NewClient(spotify.Config{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	track, err := client.Tracks().Get(ctx, "7HKRWMTErKh56EIBeFcmdf")
package spotify

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	ClientID     string       // Required: Spotify application client ID
	ClientSecret string       // Required: Spotify application client secret
	Market       string       // Optional: ISO 3166-1 country code used for track relinking
	HTTPClient   *http.Client // Optional: HTTP client (defaults to a client with a 15s timeout)
	BaseURL      string       // Optional: Web API base URL (used for testing)
	TokenURL     string       // Optional: Accounts token endpoint (used for testing)
	Logger       Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Spotify catalog operations.
type Client struct {
	market       string
	httpClient   *http.Client
	baseURL      string
	logger       Logger
	tokens       *tokenSource
	retryBackoff time.Duration

	tracks  *TrackService
	artists *ArtistService
	albums  *AlbumService
	search  *SearchService
}

const (
	// DefaultBaseURL is the Spotify Web API endpoint.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultTokenURL is the Spotify Accounts token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// NewClient creates a new Spotify API client.
//
// Returns ErrMissingCredentials if ClientID or ClientSecret is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	c := &Client{
		market:       cfg.Market,
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       cfg.Logger,
		retryBackoff: 500 * time.Millisecond,
	}

	c.tokens = newTokenSource(cfg.ClientID, cfg.ClientSecret, tokenURL, httpClient, c.logDebugf)
	c.tracks = &TrackService{client: c}
	c.artists = &ArtistService{client: c}
	c.albums = &AlbumService{client: c}
	c.search = &SearchService{client: c}

	return c, nil
}

// Tracks returns the track service.
func (c *Client) Tracks() *TrackService {
	return c.tracks
}

// Artists returns the artist service.
func (c *Client) Artists() *ArtistService {
	return c.artists
}

// Albums returns the album service.
func (c *Client) Albums() *AlbumService {
	return c.albums
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return c.search
}

// marketQuery returns the base query for endpoints that accept a market.
func (c *Client) marketQuery() url.Values {
	q := url.Values{}
	if c.market != "" {
		q.Set("market", c.market)
	}
	return q
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
