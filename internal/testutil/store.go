package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/beautyops/beautyops/internal/errors"
)

// FilterFunc reports whether an item belongs in a result
type FilterFunc[T any] func(item T) bool

// SortFunc orders two items
type SortFunc[T any] func(i, j T) bool

// InMemoryStore is a mutex guarded map keyed by id
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

// Create adds item unless id is taken
func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("Item %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[id] = item
	return nil
}

// CreateIfAbsent adds item and reports whether it was inserted, atomically
func (s *InMemoryStore[T]) CreateIfAbsent(ctx context.Context, id string, item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return false
	}
	s.items[id] = item
	return true
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return item, nil
	}

	var zero T
	return zero, ierr.NewError("item not found").
		WithHintf("Item %s not found", id).
		Mark(ierr.ErrNotFound)
}

// Put inserts or replaces item
func (s *InMemoryStore[T]) Put(ctx context.Context, id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = item
}

// Mutate applies fn to the stored item under the write lock
func (s *InMemoryStore[T]) Mutate(ctx context.Context, id string, fn func(item T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return ierr.NewError("item not found").
			WithHintf("Item %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	updated, err := fn(item)
	if err != nil {
		return err
	}
	s.items[id] = updated
	return nil
}

// List returns the items accepted by filterFn, ordered by sortFn
func (s *InMemoryStore[T]) List(ctx context.Context, filterFn FilterFunc[T], sortFn SortFunc[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []T
	for _, item := range s.items {
		if filterFn == nil || filterFn(item) {
			result = append(result, item)
		}
	}

	if sortFn != nil {
		sort.Slice(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}
	return result
}

func (s *InMemoryStore[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
