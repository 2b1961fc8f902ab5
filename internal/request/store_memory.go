package request

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"veriport/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]PresentationRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[uuid.UUID]PresentationRequest)}
}

func (s *InMemoryStore) Create(ctx context.Context, request *PresentationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[request.ID]; exists {
		return sentinel.ErrConflict
	}
	s.requests[request.ID] = *request
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*PresentationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &request, nil
}
