package store

import "sync"

// Value is a typed handle on a single key.
type Value[T any] struct {
	store *Store
	key   string
	def   T

	mu sync.Mutex
}

// NewValue returns a handle on key that reads as def until written.
func NewValue[T any](s *Store, key string, def T) *Value[T] {
	return &Value[T]{store: s, key: key, def: def}
}

// Key returns the storage key.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return Read(v.store, v.key, v.def)
}

// Set replaces the current value.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	Write(v.store, v.key, x)
}

// Update applies fn to the current value and stores the result. Updates
// through the same handle are serialized.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := fn(Read(v.store, v.key, v.def))
	Write(v.store, v.key, next)
	return next
}

// Subscribe calls fn with the new value after every write to the key.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	return v.store.Watch(v.key, func() {
		fn(v.Get())
	})
}
