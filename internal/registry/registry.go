// Package registry provides keyed registries for pluggable components.
// Components register themselves in init() functions, allowing the platform
// to discover them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps string keys to registered values of one kind.
// It is safe for concurrent use.
type Registry[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty registry. kind names the registered values in
// error messages (e.g. "format").
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

// Register adds a value under key.
// Typically called from an init() function.
// Panics if the key is already registered.
func (r *Registry[T]) Register(key string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		panic(fmt.Sprintf("registry: %s %q already registered", r.kind, key))
	}
	r.items[key] = v
}

// Get returns the value registered under key.
// Returns an error if the key is not registered.
func (r *Registry[T]) Get(key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("registry: unknown %s %q", r.kind, key)
	}
	return v, nil
}

// Exists checks if a value is registered under key.
func (r *Registry[T]) Exists(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[key]
	return ok
}

// Keys returns every registered key, sorted.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
