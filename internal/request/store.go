package request

import (
	"context"

	"github.com/google/uuid"
)

// Store persists presentation requests. Records are write-once.
type Store interface {
	Create(ctx context.Context, request *PresentationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*PresentationRequest, error)
}
