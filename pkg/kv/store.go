// Package kv provides a generic thread-safe key-value store that remembers
// insertion order.
package kv

import (
	"slices"
	"sync"
)

// Store is a thread-safe generic key-value store. Keys are reported in the
// order they were first set; overwriting a key keeps its position.
type Store[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]V
	order []K
}

// New creates a new key-value store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set stores a value by key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value)
}

func (s *Store[K, V]) setLocked(key K, value V) {
	if _, ok := s.data[key]; !ok {
		s.order = append(s.order, key)
	}
	s.data[key] = value
}

// Delete removes a key from the store.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.order = slices.DeleteFunc(s.order, func(k K) bool { return k == key })
}

// SetBatch stores multiple key-value pairs at once. New keys from the batch
// are appended in the order given by keys.
func (s *Store[K, V]) SetBatch(keys []K, items map[K]V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if v, ok := items[k]; ok {
			s.setLocked(k, v)
		}
	}
}

// Clear removes all entries from the store.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]V)
	s.order = nil
}

// Len returns the number of items in the store.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns all keys in insertion order.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Range calls fn for every entry in insertion order until fn returns false.
// The store is not locked while fn runs.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	s.mu.RLock()
	keys := slices.Clone(s.order)
	vals := make([]V, len(keys))
	for i, k := range keys {
		vals[i] = s.data[k]
	}
	s.mu.RUnlock()

	for i, k := range keys {
		if !fn(k, vals[i]) {
			return
		}
	}
}
