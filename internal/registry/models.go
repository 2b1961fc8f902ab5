// Package registry holds the identity records the gateway keeps about the
// parties it mediates between: the operating company, its registered issuers
// and verifiers, holder apps, and end users.
package registry

import (
	"time"

	"github.com/google/uuid"
)

// Company owns issuers, verifiers, holder apps, and users. The external
// customer id and API key come from the SaaS registration.
type Company struct {
	ID         uuid.UUID
	Name       string
	CustomerID string
	APIKey     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Verifier is a relying party registered with the external verification
// authority. AuthToken is the only mutable field after creation; the Token
// Custodian rotates it whenever the authority reissues it.
type Verifier struct {
	ID            uuid.UUID
	Name          string
	DID           string
	SigningKey    string
	EncryptionKey string
	AuthToken     string
	CallbackURL   string
	CompanyID     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Issuer is a credential issuer registered with the external issuer authority.
// Same token rotation rule as Verifier.
type Issuer struct {
	ID         uuid.UUID
	Name       string
	DID        string
	SigningKey string
	AuthToken  string
	URIScheme  string
	CompanyID  uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HolderApp is the mobile wallet application holders use. Immutable after
// creation. The API key is stored as a bcrypt hash.
type HolderApp struct {
	ID         uuid.UUID
	Name       string
	URIScheme  string
	APIKeyHash string
	CompanyID  uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// User is a local subject. DID stays empty until the holder establishes its
// identity; it is the join key that resolves presentations back to a user.
type User struct {
	ID        uuid.UUID
	Name      string
	DID       string
	CompanyID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
