package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/uxradar/internal/model"
)

var _ model.ListingStore = (*MemoryStore)(nil)

// MemoryStore tracks seen listing IDs for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time // listing ID → first seen
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time), now: time.Now}
}

// HasSeen returns true if the given listing ID has already been recorded.
func (s *MemoryStore) HasSeen(id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("checking seen status: empty listing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok, nil
}

// MarkSeen records a listing ID as seen. If it already exists the call is a no-op.
func (s *MemoryStore) MarkSeen(id string) error {
	if id == "" {
		return fmt.Errorf("marking seen: empty listing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; !ok {
		s.seen[id] = s.now()
	}
	return nil
}

// Cleanup forgets entries first seen more than olderThan ago.
func (s *MemoryStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, first := range s.seen {
		if first.Before(cutoff) {
			delete(s.seen, id)
		}
	}
	return nil
}

// IsEmpty returns true if nothing has been marked seen yet.
func (s *MemoryStore) IsEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen) == 0, nil
}

// Len reports how many IDs are tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
