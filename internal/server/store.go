package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pagegraph/pkg/graph"
)

// entry is a loaded recording.
type entry struct {
	graph    *graph.Graph
	loadedAt time.Time
}

// Store holds loaded graphs by handle. Graphs are immutable, so handlers
// read them without holding the lock.
type Store struct {
	mu     sync.RWMutex
	graphs map[uuid.UUID]entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{graphs: map[uuid.UUID]entry{}}
}

// Add stores g under a new random handle.
func (s *Store) Add(g *graph.Graph) uuid.UUID {
	h := uuid.New()
	s.mu.Lock()
	s.graphs[h] = entry{graph: g, loadedAt: time.Now().UTC()}
	s.mu.Unlock()
	return h
}

// Get returns the graph stored under h.
func (s *Store) Get(h uuid.UUID) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.graphs[h]
	return e, ok
}

// Delete removes h and reports whether it existed.
func (s *Store) Delete(h uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.graphs[h]
	delete(s.graphs, h)
	return ok
}

// Len returns the number of stored graphs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.graphs)
}
