package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error represents an error response from the Spotify Web API or the
// Accounts service.
//
// Errors compare equal under errors.Is when their HTTP status matches, so
// callers can test against ErrNotFound or ErrUnauthorized.
type Error struct {
	Status     int           // HTTP status code
	Message    string        // Error message from Spotify
	RetryAfter time.Duration // Server-requested delay for 429 responses
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify: error %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("spotify: error %d: %s", e.Status, e.Message)
}

// Is reports whether target is a *Error with the same status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// Temporary returns true if the request should be retried.
//
// Rate limiting (429) and server-side failures (500, 502, 503, 504) are
// considered temporary.
func (e *Error) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Predefined errors for common cases.
var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("spotify: client id and secret are required")

	// ErrNotFound matches API errors for unknown ids.
	ErrNotFound = &Error{Status: http.StatusNotFound}

	// ErrUnauthorized matches API errors for rejected credentials or tokens.
	ErrUnauthorized = &Error{Status: http.StatusUnauthorized}
)

// apiErrorBody is the error envelope returned by the Web API.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
