package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when no entry exists for a key.
var ErrNotFound = errors.New("store: key not found")

// Backend is durable storage for raw entries, one per key.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the entry stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the entry stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the backend.
	Close() error
}
