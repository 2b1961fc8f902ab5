package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"veriport/pkg/platform/sentinel"
)

// InMemoryStore implements every registry store interface over maps. Used in
// tests and when running without PostgreSQL.
type InMemoryStore struct {
	mu         sync.RWMutex
	companies  map[uuid.UUID]Company
	verifiers  map[uuid.UUID]Verifier
	issuers    map[uuid.UUID]Issuer
	holderApps map[uuid.UUID]HolderApp
	users      map[uuid.UUID]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		companies:  make(map[uuid.UUID]Company),
		verifiers:  make(map[uuid.UUID]Verifier),
		issuers:    make(map[uuid.UUID]Issuer),
		holderApps: make(map[uuid.UUID]HolderApp),
		users:      make(map[uuid.UUID]User),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, company *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.companies[company.ID]; exists {
		return sentinel.ErrConflict
	}
	s.companies[company.ID] = *company
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &company, nil
}

// Verifiers returns the verifier view of the in-memory store.
func (s *InMemoryStore) Verifiers() VerifierStore { return (*memVerifiers)(s) }

// Issuers returns the issuer view of the in-memory store.
func (s *InMemoryStore) Issuers() IssuerStore { return (*memIssuers)(s) }

// HolderApps returns the holder-app view of the in-memory store.
func (s *InMemoryStore) HolderApps() HolderAppStore { return (*memHolderApps)(s) }

// Users returns the user view of the in-memory store.
func (s *InMemoryStore) Users() UserStore { return (*memUsers)(s) }

type memVerifiers InMemoryStore

func (s *memVerifiers) Create(ctx context.Context, verifier *Verifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.verifiers[verifier.ID]; exists {
		return sentinel.ErrConflict
	}
	s.verifiers[verifier.ID] = *verifier
	return nil
}

func (s *memVerifiers) FindByID(ctx context.Context, id uuid.UUID) (*Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	verifier, ok := s.verifiers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &verifier, nil
}

func (s *memVerifiers) FindByDID(ctx context.Context, did string) (*Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, verifier := range s.verifiers {
		if verifier.DID == did {
			v := verifier
			return &v, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *memVerifiers) PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	verifier, ok := s.verifiers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	verifier.AuthToken = authToken
	verifier.UpdatedAt = time.Now()
	s.verifiers[id] = verifier
	return nil
}

type memIssuers InMemoryStore

func (s *memIssuers) Create(ctx context.Context, issuer *Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuers[issuer.ID]; exists {
		return sentinel.ErrConflict
	}
	s.issuers[issuer.ID] = *issuer
	return nil
}

func (s *memIssuers) FindByID(ctx context.Context, id uuid.UUID) (*Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issuer, ok := s.issuers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &issuer, nil
}

func (s *memIssuers) FindByDID(ctx context.Context, did string) (*Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issuer := range s.issuers {
		if issuer.DID == did {
			i := issuer
			return &i, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *memIssuers) PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issuer, ok := s.issuers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	issuer.AuthToken = authToken
	issuer.UpdatedAt = time.Now()
	s.issuers[id] = issuer
	return nil
}

type memHolderApps InMemoryStore

func (s *memHolderApps) Create(ctx context.Context, app *HolderApp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.holderApps[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.holderApps[app.ID] = *app
	return nil
}

func (s *memHolderApps) FindByID(ctx context.Context, id uuid.UUID) (*HolderApp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.holderApps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &app, nil
}

type memUsers InMemoryStore

func (s *memUsers) Create(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *memUsers) FindByDID(ctx context.Context, did string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if did == "" {
		return nil, sentinel.ErrNotFound
	}
	for _, user := range s.users {
		if user.DID == did {
			u := user
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *memUsers) PatchDID(ctx context.Context, id uuid.UUID, did string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.DID = did
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}
