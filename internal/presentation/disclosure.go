package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"
	"veriport/pkg/did"
	"veriport/pkg/platform/sentinel"
	"veriport/pkg/platform/tx"

	"veriport/internal/platform/metrics"
	"veriport/internal/registry"
	"veriport/internal/sharedcred"
)

// issuerResolver and userResolver are the slices of the registry the recorder
// needs. Stored DIDs never carry key fragments; credential DIDs may.
type issuerResolver interface {
	FindByDID(ctx context.Context, did string) (*registry.Issuer, error)
}

type userResolver interface {
	FindByDID(ctx context.Context, did string) (*registry.User, error)
}

// Recorder persists the credentials a holder disclosed. A presentation is
// recorded all-or-nothing: every issuer and subject DID must resolve before
// any row is written, and the writes share one transaction.
type Recorder struct {
	issuers issuerResolver
	users   userResolver
	shared  sharedcred.Store
	runner  tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(
	issuers issuerResolver,
	users userResolver,
	shared sharedcred.Store,
	runner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Recorder {
	return &Recorder{
		issuers: issuers,
		users:   users,
		shared:  shared,
		runner:  runner,
		logger:  logger,
		metrics: m,
	}
}

type resolvedDisclosure struct {
	issuerID   uuid.UUID
	userID     uuid.UUID
	credential Credential
}

// Record resolves and persists every disclosed credential, returning the
// persisted count.
func (r *Recorder) Record(ctx context.Context, verifierID uuid.UUID, credentials []Credential) (int, error) {
	if len(credentials) == 0 {
		return 0, nil
	}

	resolved := make([]resolvedDisclosure, 0, len(credentials))
	for _, credential := range credentials {
		disclosure, err := r.resolve(ctx, credential)
		if err != nil {
			return 0, err
		}
		resolved = append(resolved, *disclosure)
	}

	err := r.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, disclosure := range resolved {
			record := &sharedcred.SharedCredential{
				ID:         uuid.New(),
				UserID:     disclosure.userID,
				IssuerID:   disclosure.issuerID,
				VerifierID: verifierID,
				Credential: disclosure.credential.Raw(),
				CreatedAt:  time.Now().UTC(),
			}
			if err := r.shared.Create(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeResolutionFailed, "persist shared credentials")
	}

	r.metrics.RecordDisclosures(len(resolved))
	r.logger.InfoContext(ctx, "recorded disclosed credentials",
		slog.String("verifier_id", verifierID.String()),
		slog.Int("count", len(resolved)))
	return len(resolved), nil
}

func (r *Recorder) resolve(ctx context.Context, credential Credential) (*resolvedDisclosure, error) {
	issuerDID := did.StripFragment(credential.Issuer)
	issuer, err := r.issuers.FindByDID(ctx, issuerDID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeResolutionFailed,
				fmt.Sprintf("issuer %s is not registered", issuerDID))
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeResolutionFailed, "resolve issuer")
	}

	subjectDID, err := credential.SubjectDID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeResolutionFailed, "extract credential subject")
	}
	subjectDID = did.StripFragment(subjectDID)

	user, err := r.users.FindByDID(ctx, subjectDID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeResolutionFailed,
				fmt.Sprintf("subject %s is not a known user", subjectDID))
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeResolutionFailed, "resolve user")
	}

	return &resolvedDisclosure{
		issuerID:   issuer.ID,
		userID:     user.ID,
		credential: credential,
	}, nil
}
