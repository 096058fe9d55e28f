package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps revoked token ids in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !until.After(s.now()) {
		return nil
	}
	s.revoked[tokenID] = until
	s.sweep()
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(s.now()) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

// sweep drops entries whose tokens have expired. Caller holds mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, id)
		}
	}
}
