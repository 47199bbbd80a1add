package checkpoint

import (
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store implementation keeping checkpoints in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo runs. Each returned state is cloned to prevent
// external mutation of internal data.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]State)}
}

// Save stores a clone of the provided state, stamping SavedAt when unset.
func (s *InMemoryStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now().UTC()
	}
	s.states[state.RunID] = state.Clone()
	return nil
}

// Load returns the checkpoint for runID or ErrNotFound.
func (s *InMemoryStore) Load(runID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[runID]
	if !ok {
		return State{}, ErrNotFound
	}
	return state.Clone(), nil
}

// List returns all stored run ids in lexical order.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the checkpoint for runID. Deleting a missing id is a no-op.
func (s *InMemoryStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, runID)
	return nil
}
