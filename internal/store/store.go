// Package store persists JSON-encoded values under string keys.
//
// A Store keeps the current value of every key it has touched in memory.
// The backend is consulted once per key on first read and committed to on
// every write. Backend failures are logged and never returned: the
// in-memory value stays authoritative for the rest of the session.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds each backend call.
const DefaultTimeout = 5 * time.Second

// Store is a fail-soft, write-through cache over a Backend.
type Store struct {
	backend Backend
	logger  zerolog.Logger
	timeout time.Duration

	// writeMu orders backend commits the same way as memory updates.
	writeMu sync.Mutex

	mu       sync.Mutex
	values   map[string][]byte
	watchers map[string]map[int]func()
	nextID   int
}

// New creates a Store over backend. A zero timeout selects DefaultTimeout.
func New(backend Backend, logger zerolog.Logger, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		backend:  backend,
		logger:   logger.With().Str("component", "store").Logger(),
		timeout:  timeout,
		values:   make(map[string][]byte),
		watchers: make(map[string]map[int]func()),
	}
}

// Read returns the value stored under key, or def when the key is absent,
// the backend is unavailable, or the stored data cannot be decoded. A stored
// null only decodes when def itself encodes to null.
//
// On first access def becomes the in-memory value for key without being
// written back.
func Read[T any](s *Store, key string, def T) T {
	raw, ok := s.cached(key)
	if !ok {
		raw = s.load(key, def)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("deserialization failed, using default")
		s.replace(key, raw, def)
		return def
	}
	if isNull(raw) && !encodesNull(def) {
		s.logger.Warn().Str("key", key).Msg("deserialization failed on null, using default")
		s.replace(key, raw, def)
		return def
	}
	return v
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func encodesNull(v any) bool {
	encoded, err := json.Marshal(v)
	return err != nil || isNull(encoded)
}

// Write stores v under key. Later reads observe v immediately, even when
// committing it to the backend fails.
func Write[T any](s *Store, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to encode value")
		return
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	err = s.backend.Set(ctx, key, raw)
	cancel()
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("storage write failed, keeping value in memory")
	}

	s.notify(key)
}

// Watch registers fn to be called after every write to key. It returns a
// function that removes the registration.
func (s *Store) Watch(key string, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[int]func())
	}
	s.watchers[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[key], id)
	}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) cached(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[key]
	return raw, ok
}

// load fetches key from the backend and caches the result. Anything that is
// not valid JSON is replaced by the encoded default.
func (s *Store) load(key string, def any) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	raw, err := s.backend.Get(ctx, key)
	cancel()

	switch {
	case errors.Is(err, ErrNotFound):
		raw = nil
	case err != nil:
		s.logger.Warn().Err(err).Str("key", key).Msg("storage unavailable, using default")
		raw = nil
	case !json.Valid(raw):
		s.logger.Warn().Str("key", key).Msg("deserialization failed, using default")
		raw = nil
	}

	if raw == nil {
		encoded, err := json.Marshal(def)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to encode default")
			encoded = []byte("null")
		}
		raw = encoded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent write or load may have won the race
	if existing, ok := s.values[key]; ok {
		return existing
	}
	s.values[key] = raw
	return raw
}

// replace swaps an undecodable cached value for the encoded default, unless
// a write has already changed it.
func (s *Store) replace(key string, old []byte, def any) {
	encoded, err := json.Marshal(def)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.Equal(s.values[key], old) {
		s.values[key] = encoded
	}
}

func (s *Store) notify(key string) {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.watchers[key]))
	for _, fn := range s.watchers[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
