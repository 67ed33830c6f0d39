package kv

import (
	"context"
	"sort"
	"sync"
)

// implements Store using in-memory storage
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]any
}

// creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string]any)}
}

// creates an in-memory store seeded from a struct or map
func NewMemoryStoreFrom(v any) (*MemoryStore, error) {
	obj, err := ToObject(v)
	if err != nil {
		return nil, err
	}

	s := NewMemoryStore()
	for k, val := range obj {
		n, err := normalize(val)
		if err != nil {
			return nil, err
		}
		s.store[k] = n
	}

	return s, nil
}

func (s *MemoryStore) Write(_ context.Context, key string, value any) error {
	n, err := normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[key] = n
	return nil
}

func (s *MemoryStore) Read(_ context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.store[key]
	return v, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, key)
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.store))
	for k, v := range s.store {
		out[k] = v
	}

	return out, nil
}

func (s *MemoryStore) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.store))
	for k := range s.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

// keeps one MemoryStore per namespace for the lifetime of the process
type MemoryBackend struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{stores: make(map[string]*MemoryStore)}
}

func (b *MemoryBackend) Open(_ context.Context, namespace string) (Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stores[namespace]
	if !ok {
		s = NewMemoryStore()
		b.stores[namespace] = s
	}

	return s, nil
}

func (b *MemoryBackend) Drop(_ context.Context, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.stores, namespace)
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
