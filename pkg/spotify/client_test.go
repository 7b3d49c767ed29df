package spotify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// tokenResponse is the Accounts service token payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// testServer fakes both the Accounts token endpoint and the Web API.
type testServer struct {
	*httptest.Server
	tokenHits atomic.Int32
	expiresIn int
	tokenGate chan struct{}
	api       http.HandlerFunc
}

func newTestServer(t *testing.T, api http.HandlerFunc) *testServer {
	t.Helper()

	ts := &testServer{expiresIn: 3600, api: api}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if ts.tokenGate != nil {
			<-ts.tokenGate
		}
		n := ts.tokenHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-id" || pass != "test-secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client"}`))
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token form: %v", err)
		}
		if gt := r.FormValue("grant_type"); gt != "client_credentials" {
			t.Errorf("expected grant_type client_credentials, got %s", gt)
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "token-" + string(rune('0'+n)),
			TokenType:   "Bearer",
			ExpiresIn:   ts.expiresIn,
		})
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		ts.api(w, r)
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) client(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      ts.URL + "/v1",
		TokenURL:     ts.URL + "/token",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.retryBackoff = time.Millisecond
	return c
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing both", cfg: Config{}},
		{name: "missing secret", cfg: Config{ClientID: "id"}},
		{name: "missing id", cfg: Config{ClientSecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := error(&Error{Status: http.StatusNotFound, Message: "non existing id"})

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected 404 error to match ErrNotFound")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("did not expect 404 error to match ErrUnauthorized")
	}
}

func TestError_Temporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		e := &Error{Status: tt.status}
		if got := e.Temporary(); got != tt.want {
			t.Errorf("Temporary() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}
