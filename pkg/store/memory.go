package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/railcdl/pkg/network"
)

// MemoryStore keeps records in a map guarded by a read-write mutex.
// Callers always receive copies.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, g *network.Network) (*Record, error) {
	rec, err := newRecord(g)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return clone(rec), nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, NotFound(id)
	}
	return clone(rec), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range slices.Backward(s.order) {
		rec := *s.records[id]
		rec.Data = nil
		out = append(out, rec)
	}
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return NotFound(id)
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func clone(r *Record) *Record {
	c := *r
	c.Data = slices.Clone(r.Data)
	return &c
}
