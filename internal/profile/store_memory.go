package profile

import (
	"context"
	"sync"

	id "admitly/pkg/domain"
	"admitly/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in a map. Used in tests and when no Postgres
// DSN is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]StudentProfile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.UserID]StudentProfile)}
}

func (s *InMemoryStore) Upsert(_ context.Context, p *StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.OwnerID] = *p
	return nil
}

func (s *InMemoryStore) FindByOwner(_ context.Context, ownerID id.UserID) (*StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[ownerID]; ok {
		clone := p
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}
