// Package token keeps each verifier's upstream auth token current. The
// authority may hand back a replacement token on any call, including calls
// whose verdict is negative, and the replacement must be durable before the
// next call goes out.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"veriport/internal/platform/metrics"
	"veriport/internal/registry"
)

// Store is the slice of the registry the custodian needs. Any
// registry.VerifierStore satisfies it.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*registry.Verifier, error)
	PatchAuthToken(ctx context.Context, id uuid.UUID, authToken string) error
}

// Custodian mediates reads and rotations of per-verifier auth tokens.
// Concurrent rotations are resolved last-write-wins; a stale token is
// recoverable because the authority re-issues on the next authenticated call.
type Custodian struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewCustodian(store Store, logger *slog.Logger, metrics *metrics.Metrics) *Custodian {
	return &Custodian{store: store, logger: logger, metrics: metrics}
}

// Current returns the verifier's auth token in "Bearer <token>" form.
func (c *Custodian) Current(ctx context.Context, verifierID uuid.UUID) (string, error) {
	verifier, err := c.store.FindByID(ctx, verifierID)
	if err != nil {
		return "", fmt.Errorf("load auth token: %w", err)
	}
	return Normalize(verifier.AuthToken), nil
}

// Rotate persists a replacement token. An empty replacement is a no-op: the
// authority omits the header when the current token is still valid.
func (c *Custodian) Rotate(ctx context.Context, verifierID uuid.UUID, newToken string) error {
	if newToken == "" {
		return nil
	}
	if err := c.store.PatchAuthToken(ctx, verifierID, newToken); err != nil {
		return fmt.Errorf("rotate auth token: %w", err)
	}
	c.metrics.RecordTokenRotation()
	c.logger.InfoContext(ctx, "rotated verifier auth token", slog.String("verifier_id", verifierID.String()))
	return nil
}

// Normalize ensures the scheme prefix is present exactly once. Stored tokens
// may or may not already carry it.
func Normalize(token string) string {
	if token == "" || strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
