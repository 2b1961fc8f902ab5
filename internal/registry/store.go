package registry

import (
	"context"

	"github.com/google/uuid"
)

// Store interfaces per entity. Stores return sentinel.ErrNotFound for missing
// records; services translate that into domain errors. DID lookups expect the
// bare DID with any #fragment already stripped.

type CompanyStore interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
}

type VerifierStore interface {
	Create(ctx context.Context, verifier *Verifier) error
	FindByID(ctx context.Context, id uuid.UUID) (*Verifier, error)
	FindByDID(ctx context.Context, did string) (*Verifier, error)
	PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error
}

type IssuerStore interface {
	Create(ctx context.Context, issuer *Issuer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Issuer, error)
	FindByDID(ctx context.Context, did string) (*Issuer, error)
	PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error
}

type HolderAppStore interface {
	Create(ctx context.Context, app *HolderApp) error
	FindByID(ctx context.Context, id uuid.UUID) (*HolderApp, error)
}

type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByDID(ctx context.Context, did string) (*User, error)
	PatchDID(ctx context.Context, id uuid.UUID, did string) error
}
