package otp

import (
	"sync"
	"time"
)

// MemoryStore is an in-process Store guarded by a mutex.
// Challenges do not survive a restart; that is by contract, not an oversight.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]Challenge),
	}
}

// Save implements Store.
func (s *MemoryStore) Save(identity string, ch Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[identity] = ch
}

// Get implements Store.
func (s *MemoryStore) Get(identity string) (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[identity]
	return ch, ok
}

// Delete implements Store.
func (s *MemoryStore) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, identity)
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for identity, ch := range s.challenges {
		if now.After(ch.ExpiresAt) {
			delete(s.challenges, identity)
			removed++
		}
	}
	return removed
}

// Len reports the number of pending challenges. Used by tests and metrics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
