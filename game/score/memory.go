package score

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps best scores for the lifetime of the process
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scores: make(map[string]int)}
}

// Get returns the stored score for key
func (s *MemoryStore) Get(_ context.Context, key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	moves, ok := s.scores[key]
	return moves, ok
}

// Set stores the score for key
func (s *MemoryStore) Set(_ context.Context, key string, moves int) error {
	if !valid(moves) {
		return fmt.Errorf("invalid score %d", moves)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[key] = moves
	return nil
}

// SetIfLower stores moves unless the recorded score is already lower or equal
func (s *MemoryStore) SetIfLower(_ context.Context, key string, moves int) (int, bool, error) {
	if !valid(moves) {
		return 0, false, fmt.Errorf("invalid score %d", moves)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if best, ok := s.scores[key]; ok && best <= moves {
		return best, false, nil
	}
	s.scores[key] = moves
	return moves, true, nil
}
