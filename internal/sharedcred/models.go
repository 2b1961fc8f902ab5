// Package sharedcred persists the durable disclosure records created after a
// successful verification. Rows are append-only: one per disclosed credential,
// never updated.
package sharedcred

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SharedCredential links a disclosed credential to the local user and issuer
// it resolved to, and the verifier it was disclosed to.
type SharedCredential struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	IssuerID   uuid.UUID
	VerifierID uuid.UUID
	Credential json.RawMessage
	CreatedAt  time.Time
}
