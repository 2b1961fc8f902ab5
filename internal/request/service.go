package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"
	"veriport/pkg/platform/sentinel"

	"veriport/internal/authority"
	"veriport/internal/registry"
	"veriport/internal/token"
)

// AuthorityClient is the slice of the authority client request creation uses.
type AuthorityClient interface {
	SendRequest(ctx context.Context, authToken string, opts authority.SendRequestOptions) (*authority.SendRequestOutcome, error)
}

// CreateParams describes the challenge a verifier wants to send.
type CreateParams struct {
	VerifierID      uuid.UUID
	HolderAppID     uuid.UUID
	IssuerIDs       []uuid.UUID
	CredentialTypes []string
	Metadata        map[string]any
}

// Service creates presentation requests through the external authority. The
// authority mints the request id, deeplink, and QR code; the ledger keeps the
// local record that later correlates the holder's response.
type Service struct {
	store      Store
	verifiers  registry.VerifierStore
	issuers    registry.IssuerStore
	holderApps registry.HolderAppStore
	custodian  *token.Custodian
	client     AuthorityClient
	logger     *slog.Logger
}

func NewService(
	store Store,
	verifiers registry.VerifierStore,
	issuers registry.IssuerStore,
	holderApps registry.HolderAppStore,
	custodian *token.Custodian,
	client AuthorityClient,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		verifiers:  verifiers,
		issuers:    issuers,
		holderApps: holderApps,
		custodian:  custodian,
		client:     client,
		logger:     logger,
	}
}

// Create sends the request to the authority and persists the returned record.
func (s *Service) Create(ctx context.Context, params CreateParams) (*PresentationRequest, error) {
	if len(params.CredentialTypes) == 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "at least one credential type is required")
	}
	if len(params.IssuerIDs) == 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "at least one issuer is required")
	}

	verifier, err := s.verifiers.FindByID(ctx, params.VerifierID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "verifier not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load verifier")
	}

	if _, err := s.holderApps.FindByID(ctx, params.HolderAppID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "holder app not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load holder app")
	}

	issuerDIDs := make([]string, 0, len(params.IssuerIDs))
	for _, issuerID := range params.IssuerIDs {
		issuer, err := s.issuers.FindByID(ctx, issuerID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, domainerrors.New(domainerrors.CodeNotFound,
					fmt.Sprintf("issuer %s not found", issuerID))
			}
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load issuer")
		}
		issuerDIDs = append(issuerDIDs, issuer.DID)
	}

	credentialRequests := make([]CredentialRequest, 0, len(params.CredentialTypes))
	authorityRequests := make([]authority.CredentialRequestOptions, 0, len(params.CredentialTypes))
	for _, credentialType := range params.CredentialTypes {
		credentialRequests = append(credentialRequests, CredentialRequest{
			Type:     credentialType,
			Issuers:  issuerDIDs,
			Required: true,
		})
		authorityRequests = append(authorityRequests, authority.CredentialRequestOptions{
			Type:     credentialType,
			Issuers:  issuerDIDs,
			Required: true,
		})
	}

	authToken, err := s.custodian.Current(ctx, verifier.ID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load verifier auth token")
	}

	outcome, err := s.client.SendRequest(ctx, authToken, authority.SendRequestOptions{
		VerifierDID:        verifier.DID,
		CredentialRequests: authorityRequests,
		ECCPrivateKey:      verifier.SigningKey,
		Metadata:           params.Metadata,
	})
	if outcome != nil && outcome.NewAuthToken != "" && token.Normalize(outcome.NewAuthToken) != authToken {
		if rotateErr := s.custodian.Rotate(ctx, verifier.ID, outcome.NewAuthToken); rotateErr != nil {
			s.logger.ErrorContext(ctx, "token rotation failed after sendRequest",
				slog.String("verifier_id", verifier.ID.String()),
				slog.String("error", rotateErr.Error()))
		}
	}
	if err != nil {
		var statusErr *authority.StatusError
		if errors.As(err, &statusErr) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "authority rejected sendRequest")
		}
		return nil, err
	}

	requestID, err := uuid.Parse(outcome.Result.ID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "authority returned a malformed request id")
	}

	record := &PresentationRequest{
		ID:                 requestID,
		VerifierID:         verifier.ID,
		HolderAppID:        params.HolderAppID,
		CredentialRequests: credentialRequests,
		Metadata:           params.Metadata,
		Deeplink:           outcome.Result.Deeplink,
		QRCode:             outcome.Result.QRCode,
		Data:               outcome.Raw,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "persist presentation request")
	}

	s.logger.InfoContext(ctx, "created presentation request",
		slog.String("request_id", record.ID.String()),
		slog.String("verifier_id", verifier.ID.String()))
	return record, nil
}

// Get loads one presentation request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PresentationRequest, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "presentation request not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load presentation request")
	}
	return record, nil
}
