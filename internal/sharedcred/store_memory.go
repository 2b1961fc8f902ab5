package sharedcred

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	credentials []SharedCredential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(ctx context.Context, credential *SharedCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *credential
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.credentials = append(s.credentials, stored)
	return nil
}

func (s *InMemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*SharedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*SharedCredential
	for i := range s.credentials {
		if s.credentials[i].UserID == userID {
			c := s.credentials[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// All returns every stored credential; test helper.
func (s *InMemoryStore) All() []SharedCredential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SharedCredential{}, s.credentials...)
}
