package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxRetries = 3

// get performs an authenticated GET against the Web API and decodes the
// JSON response into out.
//
// It handles:
// - Bearer token injection from the token cache
// - One token refresh when the API answers 401
// - Retry with exponential backoff on network errors, 429 and 5xx
// - Context cancellation
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	backoff := c.retryBackoff
	refreshed := false

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("spotify: GET %s (attempt %d/%d)", path, i+1, maxRetries)

		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("spotify: failed to get access token: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "encore/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("spotify: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("spotify: failed to decode response: %w", err)
			}
			return nil
		}

		apiErr := parseAPIError(resp, body)

		// Tokens can be revoked before their advertised expiry.
		if resp.StatusCode == http.StatusUnauthorized && !refreshed {
			c.logDebugf("spotify: token rejected, refreshing")
			c.tokens.invalidate(token)
			refreshed = true
			lastErr = apiErr
			continue
		}

		if apiErr.Temporary() && i < maxRetries-1 {
			wait := backoff
			if apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			c.logDebugf("spotify: temporary error, retrying in %s: %v", wait, apiErr)
			lastErr = apiErr
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		return apiErr
	}

	return fmt.Errorf("spotify: max retries exceeded: %w", lastErr)
}

// parseAPIError builds an *Error from a non-2xx response.
func parseAPIError(resp *http.Response, body []byte) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Error.Message
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	return apiErr
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextBackoff doubles the backoff, capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
