package profile

import (
	"context"
	"sync"
)

// MemoryStore implements Repository with in-memory storage.
// A single RWMutex serializes writes; reads see whole-record copies.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryStore creates an empty in-memory card store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*Profile)}
}

func (m *MemoryStore) Create(_ context.Context, p *Profile) (*Profile, error) {
	next, err := prepareCreate(p)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[next.Slug]; exists {
		return nil, ErrDuplicateSlug
	}
	m.profiles[next.Slug] = next

	return next.Clone(), nil
}

func (m *MemoryStore) Get(_ context.Context, slug string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[NormalizeSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}

	return p.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, slug string, mutate func(*Profile) error) (*Profile, error) {
	key := NormalizeSlug(slug)

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.profiles[key]
	if !ok {
		return nil, ErrNotFound
	}

	next, err := applyUpdate(current, mutate)
	if err != nil {
		return nil, err
	}

	if next.Slug != key {
		if _, taken := m.profiles[next.Slug]; taken {
			return nil, ErrDuplicateSlug
		}
		delete(m.profiles, key)
	}
	m.profiles[next.Slug] = next

	return next.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, slug string) (bool, error) {
	key := NormalizeSlug(slug)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[key]; !ok {
		return false, nil
	}
	delete(m.profiles, key)

	return true, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.Clone())
	}

	return out, nil
}

var _ Repository = (*MemoryStore)(nil)
