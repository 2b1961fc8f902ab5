package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"
	"veriport/pkg/platform/sentinel"

	"veriport/internal/audit"
	"veriport/internal/authority"
	"veriport/internal/notify"
	"veriport/internal/platform/metrics"
	"veriport/internal/platform/tracer"
	"veriport/internal/registry"
	"veriport/internal/request"
	"veriport/internal/token"
)

const notifyTimeout = 5 * time.Second

// AuthorityClient is the slice of the authority client the forwarder uses.
type AuthorityClient interface {
	VerifyPresentation(ctx context.Context, authToken, version string, req authority.VerifyPlaintextRequest) (*authority.VerifyOutcome, error)
	VerifyNoPresentation(ctx context.Context, authToken, version string, req authority.VerifyNoPresentationRequest) (*authority.VerifyOutcome, error)
	VerifyEncryptedPresentation(ctx context.Context, authToken, version string, req authority.VerifyEncryptedRequest) (*authority.VerifyOutcome, error)
}

// verifierLookup is the slice of the registry the forwarder uses.
type verifierLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*registry.Verifier, error)
}

// Service is the Verification Forwarder. One inbound envelope produces at most
// one authority call; there is no retry because verification is not idempotent
// upstream (a second call can consume the one-time challenge).
type Service struct {
	requests  request.Store
	verifiers verifierLookup
	custodian *token.Custodian
	client    AuthorityClient
	recorder  *Recorder
	notifier  notify.Notifier
	audit     *audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

func NewService(
	requests request.Store,
	verifiers verifierLookup,
	custodian *token.Custodian,
	client AuthorityClient,
	recorder *Recorder,
	notifier notify.Notifier,
	auditPublisher *audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	t tracer.Tracer,
) *Service {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Service{
		requests:  requests,
		verifiers: verifiers,
		custodian: custodian,
		client:    client,
		recorder:  recorder,
		notifier:  notifier,
		audit:     auditPublisher,
		logger:    logger,
		metrics:   m,
		tracer:    t,
	}
}

// VerifyV1 handles the first-generation plaintext envelope.
func (s *Service) VerifyV1(ctx context.Context, version string, envelope V1Envelope) (*Response, error) {
	if err := envelope.Validate(); err != nil {
		s.metrics.RecordVerification(PathV1.String(), "protocol_error")
		return nil, err
	}
	return s.verify(ctx, PathV1, version, envelope.PresentationRequestID, func(ctx context.Context, verifier *registry.Verifier, authToken string) (*authority.VerifyOutcome, error) {
		if len(envelope.NoPresentation) > 0 {
			return s.client.VerifyNoPresentation(ctx, authToken, version, authority.VerifyNoPresentationRequest{
				NoPresentation: envelope.NoPresentation,
				VerifierDID:    verifier.DID,
			})
		}
		return s.client.VerifyPresentation(ctx, authToken, version, authority.VerifyPlaintextRequest{
			Presentation: envelope.Presentation,
			VerifierDID:  verifier.DID,
		})
	})
}

// VerifyV2 handles the second-generation encrypted envelope.
func (s *Service) VerifyV2(ctx context.Context, version string, envelope V2Envelope) (*Response, error) {
	return s.verifyEncrypted(ctx, PathV2, version, envelope)
}

// VerifyV3 handles the third-generation envelope on the dedicated endpoint.
// The wire shape matches v2; the generations differ in credential encoding and
// are versioned apart so they can diverge.
func (s *Service) VerifyV3(ctx context.Context, version string, envelope V2Envelope) (*Response, error) {
	return s.verifyEncrypted(ctx, PathV3, version, envelope)
}

func (s *Service) verifyEncrypted(ctx context.Context, path Path, version string, envelope V2Envelope) (*Response, error) {
	if err := envelope.Validate(); err != nil {
		s.metrics.RecordVerification(path.String(), "protocol_error")
		return nil, err
	}
	requestID := envelope.PresentationRequestInfo.PresentationRequest.ID
	return s.verify(ctx, path, version, requestID, func(ctx context.Context, verifier *registry.Verifier, authToken string) (*authority.VerifyOutcome, error) {
		return s.client.VerifyEncryptedPresentation(ctx, authToken, version, authority.VerifyEncryptedRequest{
			EncryptedPresentation: envelope.EncryptedPresentation,
			VerifierDID:           verifier.DID,
			EncryptionPrivateKey:  verifier.EncryptionKey,
		})
	})
}

type authorityCall func(ctx context.Context, verifier *registry.Verifier, authToken string) (*authority.VerifyOutcome, error)

func (s *Service) verify(ctx context.Context, path Path, version string, requestID uuid.UUID, call authorityCall) (*Response, error) {
	ctx, span := s.tracer.Start(ctx, "presentation.verify",
		tracer.String("path", path.String()),
		tracer.String("request_id", requestID.String()))
	response, err := s.doVerify(ctx, path, version, requestID, call)
	span.End(err)
	return response, err
}

func (s *Service) doVerify(ctx context.Context, path Path, version string, requestID uuid.UUID, call authorityCall) (*Response, error) {
	presentationRequest, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordVerification(path.String(), "not_found")
			return nil, domainerrors.New(domainerrors.CodeNotFound, "presentation request not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load presentation request")
	}

	verifier, err := s.verifiers.FindByID(ctx, presentationRequest.VerifierID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordVerification(path.String(), "not_found")
			return nil, domainerrors.New(domainerrors.CodeNotFound, "verifier not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load verifier")
	}

	authToken, err := s.custodian.Current(ctx, verifier.ID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load verifier auth token")
	}

	outcome, callErr := call(ctx, verifier, authToken)

	// The authority can re-issue the token on any response it actually sent,
	// error statuses included. Transport failures and timeouts produce no
	// outcome and therefore no rotation.
	if outcome != nil {
		s.rotate(ctx, verifier, authToken, outcome.NewAuthToken, requestID)
	}

	if callErr != nil {
		return nil, s.translateCallError(ctx, path, requestID, verifier.ID, callErr)
	}

	if !outcome.Result.IsVerified {
		s.metrics.RecordVerification(path.String(), "rejected")
		s.audit.Emit(ctx, audit.NewEvent(audit.EventPresentationRejected, verifier.ID, requestID.String(), map[string]any{
			"path":    path.String(),
			"message": outcome.Result.Message,
		}))
		return nil, domainerrors.New(domainerrors.CodeVerificationRejected,
			"verification failed: "+outcome.Result.Message)
	}

	verdict, document, err := s.normalize(outcome.Result)
	if err != nil {
		return nil, err
	}

	if verdict.Kind == KindVerifiablePresentation {
		count, err := s.recorder.Record(ctx, verifier.ID, document.Credentials())
		if err != nil {
			s.metrics.RecordVerification(path.String(), "resolution_failed")
			return nil, err
		}
		if count > 0 {
			s.audit.Emit(ctx, audit.NewEvent(audit.EventDisclosureRecorded, verifier.ID, requestID.String(), map[string]any{
				"count": count,
			}))
		}
	}

	response := &Response{
		IsVerified:            true,
		Type:                  verdict.Kind,
		PresentationRequestID: requestID,
		Receipt: &Receipt{
			SubjectDID:      verdict.SubjectDID,
			CredentialTypes: verdict.CredentialTypes,
			VerifierDID:     verifier.DID,
			HolderAppID:     presentationRequest.HolderAppID,
			IssuerDIDs:      issuerDIDs(presentationRequest, verdict.Kind),
		},
	}

	s.metrics.RecordVerification(path.String(), "verified")
	s.audit.Emit(ctx, audit.NewEvent(audit.EventPresentationVerified, verifier.ID, requestID.String(), map[string]any{
		"path": path.String(),
		"kind": verdict.Kind,
	}))
	s.notifyUser(ctx, presentationRequest, response)

	return response, nil
}

func (s *Service) rotate(ctx context.Context, verifier *registry.Verifier, sentToken, newToken string, requestID uuid.UUID) {
	if newToken == "" || token.Normalize(newToken) == sentToken {
		return
	}
	if err := s.custodian.Rotate(ctx, verifier.ID, newToken); err != nil {
		// A failed rotation is recoverable: the authority re-issues on the
		// next authenticated call.
		s.logger.ErrorContext(ctx, "token rotation failed",
			slog.String("verifier_id", verifier.ID.String()),
			slog.String("error", err.Error()))
		return
	}
	s.audit.Emit(ctx, audit.NewEvent(audit.EventTokenRotated, verifier.ID, requestID.String(), nil))
}

func (s *Service) translateCallError(ctx context.Context, path Path, requestID, verifierID uuid.UUID, callErr error) error {
	var statusErr *authority.StatusError
	if errors.As(callErr, &statusErr) {
		if statusErr.StatusCode == http.StatusBadRequest {
			s.metrics.RecordVerification(path.String(), "rejected")
			s.audit.Emit(ctx, audit.NewEvent(audit.EventPresentationRejected, verifierID, requestID.String(), map[string]any{
				"path":   path.String(),
				"status": statusErr.StatusCode,
			}))
			return domainerrors.Wrap(callErr, domainerrors.CodeVerificationRejected, "authority rejected the presentation")
		}
		s.metrics.RecordVerification(path.String(), "external_error")
		return domainerrors.Wrap(callErr, domainerrors.CodeExternal, "authority call failed")
	}
	if domainerrors.HasCode(callErr, domainerrors.CodeTimeout) {
		s.metrics.RecordVerification(path.String(), "timeout")
		return callErr
	}
	s.metrics.RecordVerification(path.String(), "external_error")
	return callErr
}

func (s *Service) normalize(result authority.VerifyResult) (*Verdict, *Document, error) {
	verdict := &Verdict{
		IsVerified: true,
		Kind:       result.Type,
		Message:    result.Message,
	}

	var document Document
	if len(result.Presentation) > 0 {
		if err := json.Unmarshal(result.Presentation, &document); err != nil {
			return nil, nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "malformed presentation document from authority")
		}
	}

	for i, credential := range document.Credentials() {
		if i == 0 {
			if subjectDID, err := credential.SubjectDID(); err == nil {
				verdict.SubjectDID = subjectDID
			}
		}
		for _, credentialType := range credential.Type {
			if credentialType != "VerifiableCredential" {
				verdict.CredentialTypes = append(verdict.CredentialTypes, credentialType)
			}
		}
	}

	return verdict, &document, nil
}

// notifyUser publishes the settled verdict on the correlated user's channel.
// Detached from the request: the HTTP response neither waits for nor fails on
// delivery.
func (s *Service) notifyUser(ctx context.Context, presentationRequest *request.PresentationRequest, response *Response) {
	userID, ok := presentationRequest.CorrelatedUserID()
	if !ok {
		s.logger.DebugContext(ctx, "presentation request has no correlated user, skipping notification",
			slog.String("request_id", presentationRequest.ID.String()))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Publish(ctx, userID, response); err != nil {
			s.metrics.RecordNotifyFailure()
			s.logger.ErrorContext(ctx, "result notification failed",
				slog.String("user_id", userID),
				slog.String("request_id", presentationRequest.ID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

func issuerDIDs(presentationRequest *request.PresentationRequest, kind string) []string {
	if kind != KindVerifiablePresentation {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, credentialRequest := range presentationRequest.CredentialRequests {
		for _, issuer := range credentialRequest.Issuers {
			if _, ok := seen[issuer]; ok {
				continue
			}
			seen[issuer] = struct{}{}
			out = append(out, issuer)
		}
	}
	return out
}
