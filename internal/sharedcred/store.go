package sharedcred

import (
	"context"

	"github.com/google/uuid"
)

// Store is append-only. ListByUser exists for observability and the data
// export surface, not for the verification pipeline.
type Store interface {
	Create(ctx context.Context, credential *SharedCredential) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*SharedCredential, error)
}
