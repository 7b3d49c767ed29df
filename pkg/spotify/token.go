package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const (
	// expiryBuffer is subtracted from the advertised token lifetime. Short
	// lifetimes give up at most half of themselves to the buffer.
	expiryBuffer = 60 * time.Second

	// tokenTimeout bounds a shared token fetch, which outlives the caller
	// that started it.
	tokenTimeout = 10 * time.Second
)

// tokenSource caches a client-credentials access token.
//
// The token is fetched lazily on first use and refreshed once it expires.
// Concurrent callers that find the cache empty share a single fetch. The
// grant itself is delegated to clientcredentials, which does not cache.
type tokenSource struct {
	grant      *clientcredentials.Config
	httpClient *http.Client
	debugf     func(format string, args ...interface{})
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time

	group singleflight.Group
}

func newTokenSource(clientID, clientSecret, tokenURL string, httpClient *http.Client, debugf func(string, ...interface{})) *tokenSource {
	return &tokenSource{
		grant: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		debugf:     debugf,
		now:        time.Now,
	}
}

// Token returns a valid access token, fetching a new one if needed.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := ts.cached(); ok {
		return token, nil
	}

	ch := ts.group.DoChan("token", func() (interface{}, error) {
		if token, ok := ts.cached(); ok {
			return token, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenTimeout)
		defer cancel()
		return ts.fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// invalidate drops the cached token if it is still the given one.
// A newer token fetched by another caller is kept.
func (ts *tokenSource) invalidate(token string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token == token {
		ts.token = ""
		ts.expiry = time.Time{}
	}
}

func (ts *tokenSource) cached() (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiry) {
		return ts.token, true
	}
	return "", false
}

// fetch requests a new token from the Accounts service and stores it.
func (ts *tokenSource) fetch(ctx context.Context) (string, error) {
	ts.debugf("spotify: requesting access token")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, ts.httpClient)
	tok, err := ts.grant.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			msg := retrieveErr.ErrorDescription
			if msg == "" {
				msg = retrieveErr.ErrorCode
			}
			return "", &Error{Status: retrieveErr.Response.StatusCode, Message: msg}
		}
		return "", fmt.Errorf("token request failed: %w", err)
	}

	var lifetime time.Duration
	if !tok.Expiry.IsZero() {
		lifetime = effectiveLifetime(time.Until(tok.Expiry))
	}

	ts.mu.Lock()
	ts.token = tok.AccessToken
	ts.expiry = ts.now().Add(lifetime)
	ts.mu.Unlock()

	ts.debugf("spotify: access token valid for %s", lifetime)
	return tok.AccessToken, nil
}

// effectiveLifetime applies expiryBuffer to an advertised lifetime.
func effectiveLifetime(advertised time.Duration) time.Duration {
	if advertised <= 0 {
		return 0
	}
	buffer := expiryBuffer
	if half := advertised / 2; buffer > half {
		buffer = half
	}
	return advertised - buffer
}
