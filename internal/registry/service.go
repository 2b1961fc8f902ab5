package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"veriport/pkg/did"
	domainerrors "veriport/pkg/domain-errors"
	"veriport/pkg/platform/sentinel"
	"veriport/pkg/secrets"

	"veriport/internal/authority"
)

// AuthorityClient is the slice of the authority client the registry uses for
// registration flows.
type AuthorityClient interface {
	RegisterVerifier(ctx context.Context, opts authority.RegisterOptions) (*authority.RegisterOutcome, error)
	RegisterIssuer(ctx context.Context, opts authority.RegisterOptions) (*authority.RegisterOutcome, error)
	RegisterHolderApp(ctx context.Context, apiKey string, opts authority.HolderAppOptions) (*authority.HolderAppResult, error)
}

type CreateCompanyParams struct {
	Name       string
	CustomerID string
	APIKey     string
}

type RegisterVerifierParams struct {
	Name        string
	CompanyID   uuid.UUID
	CallbackURL string
}

type RegisterIssuerParams struct {
	Name      string
	CompanyID uuid.UUID
	URIScheme string
}

type RegisterHolderAppParams struct {
	Name      string
	URIScheme string
	CompanyID uuid.UUID
}

type CreateUserParams struct {
	Name      string
	CompanyID uuid.UUID
	DID       string
}

// Service owns the identity records and the registration flows that mint them.
// Verifier and issuer registration call the external authority, which returns
// the DID, key material, and the initial auth token; holder apps register with
// the SaaS under the company's API key.
type Service struct {
	companies  CompanyStore
	verifiers  VerifierStore
	issuers    IssuerStore
	holderApps HolderAppStore
	users      UserStore
	client     AuthorityClient
	logger     *slog.Logger
}

func NewService(
	companies CompanyStore,
	verifiers VerifierStore,
	issuers IssuerStore,
	holderApps HolderAppStore,
	users UserStore,
	client AuthorityClient,
	logger *slog.Logger,
) *Service {
	return &Service{
		companies:  companies,
		verifiers:  verifiers,
		issuers:    issuers,
		holderApps: holderApps,
		users:      users,
		client:     client,
		logger:     logger,
	}
}

func (s *Service) CreateCompany(ctx context.Context, params CreateCompanyParams) (*Company, error) {
	if params.Name == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "company name is required")
	}
	if params.CustomerID == "" || params.APIKey == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "customer id and api key are required")
	}

	company := &Company{
		ID:         uuid.New(),
		Name:       params.Name,
		CustomerID: params.CustomerID,
		APIKey:     params.APIKey,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "persist company")
	}
	return company, nil
}

func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "company")
	}
	return company, nil
}

// RegisterVerifier registers a new verifier with the external verification
// authority and persists the minted identity. The authority's initial auth
// token is stored as-is; the Token Custodian rotates it from there on.
func (s *Service) RegisterVerifier(ctx context.Context, params RegisterVerifierParams) (*Verifier, error) {
	if params.Name == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "verifier name is required")
	}
	company, err := s.companies.FindByID(ctx, params.CompanyID)
	if err != nil {
		return nil, storeError(err, "company")
	}

	outcome, err := s.client.RegisterVerifier(ctx, authority.RegisterOptions{
		Name:       params.Name,
		APIKey:     company.APIKey,
		CustomerID: company.CustomerID,
	})
	if err != nil {
		return nil, registrationError(err, "verifier registration failed")
	}

	verifier := &Verifier{
		ID:            uuid.New(),
		Name:          params.Name,
		DID:           outcome.Result.DID,
		SigningKey:    outcome.Result.Keys.Signing.PrivateKey,
		EncryptionKey: outcome.Result.Keys.Encryption.PrivateKey,
		AuthToken:     outcome.AuthToken,
		CallbackURL:   params.CallbackURL,
		CompanyID:     company.ID,
	}
	if err := s.verifiers.Create(ctx, verifier); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "persist verifier")
	}

	s.logger.InfoContext(ctx, "registered verifier",
		slog.String("verifier_id", verifier.ID.String()),
		slog.String("did", verifier.DID))
	return verifier, nil
}

func (s *Service) GetVerifier(ctx context.Context, id uuid.UUID) (*Verifier, error) {
	verifier, err := s.verifiers.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "verifier")
	}
	return verifier, nil
}

// RegisterIssuer mirrors RegisterVerifier against the issuer authority.
func (s *Service) RegisterIssuer(ctx context.Context, params RegisterIssuerParams) (*Issuer, error) {
	if params.Name == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "issuer name is required")
	}
	company, err := s.companies.FindByID(ctx, params.CompanyID)
	if err != nil {
		return nil, storeError(err, "company")
	}

	outcome, err := s.client.RegisterIssuer(ctx, authority.RegisterOptions{
		Name:       params.Name,
		APIKey:     company.APIKey,
		CustomerID: company.CustomerID,
	})
	if err != nil {
		return nil, registrationError(err, "issuer registration failed")
	}

	issuer := &Issuer{
		ID:         uuid.New(),
		Name:       params.Name,
		DID:        outcome.Result.DID,
		SigningKey: outcome.Result.Keys.Signing.PrivateKey,
		AuthToken:  outcome.AuthToken,
		URIScheme:  params.URIScheme,
		CompanyID:  company.ID,
	}
	if err := s.issuers.Create(ctx, issuer); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "persist issuer")
	}

	s.logger.InfoContext(ctx, "registered issuer",
		slog.String("issuer_id", issuer.ID.String()),
		slog.String("did", issuer.DID))
	return issuer, nil
}

func (s *Service) GetIssuer(ctx context.Context, id uuid.UUID) (*Issuer, error) {
	issuer, err := s.issuers.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "issuer")
	}
	return issuer, nil
}

// RegisterHolderApp registers the app with the SaaS under the company's API
// key, mints a fresh API key for the app, and stores only its bcrypt hash.
// The plaintext key is returned exactly once.
func (s *Service) RegisterHolderApp(ctx context.Context, params RegisterHolderAppParams) (*HolderApp, string, error) {
	if params.Name == "" || params.URIScheme == "" {
		return nil, "", domainerrors.New(domainerrors.CodeInvalidInput, "holder app name and uri scheme are required")
	}
	company, err := s.companies.FindByID(ctx, params.CompanyID)
	if err != nil {
		return nil, "", storeError(err, "company")
	}

	result, err := s.client.RegisterHolderApp(ctx, company.APIKey, authority.HolderAppOptions{
		Name:       params.Name,
		URIScheme:  params.URIScheme,
		CustomerID: company.CustomerID,
	})
	if err != nil {
		return nil, "", registrationError(err, "holder app registration failed")
	}

	apiKey, err := secrets.Generate()
	if err != nil {
		return nil, "", err
	}
	hash, err := secrets.Hash(apiKey)
	if err != nil {
		return nil, "", err
	}

	id := uuid.New()
	if remoteID, parseErr := uuid.Parse(result.ID); parseErr == nil {
		id = remoteID
	}

	app := &HolderApp{
		ID:         id,
		Name:       params.Name,
		URIScheme:  params.URIScheme,
		APIKeyHash: hash,
		CompanyID:  company.ID,
	}
	if err := s.holderApps.Create(ctx, app); err != nil {
		return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "persist holder app")
	}

	s.logger.InfoContext(ctx, "registered holder app",
		slog.String("holder_app_id", app.ID.String()),
		slog.String("name", app.Name))
	return app, apiKey, nil
}

func (s *Service) GetHolderApp(ctx context.Context, id uuid.UUID) (*HolderApp, error) {
	app, err := s.holderApps.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "holder app")
	}
	return app, nil
}

// VerifyHolderAppKey checks a presented API key against the stored hash.
func (s *Service) VerifyHolderAppKey(ctx context.Context, id uuid.UUID, apiKey string) error {
	app, err := s.holderApps.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "holder app")
	}
	return secrets.Verify(apiKey, app.APIKeyHash)
}

func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if params.Name == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "user name is required")
	}
	if _, err := s.companies.FindByID(ctx, params.CompanyID); err != nil {
		return nil, storeError(err, "company")
	}

	user := &User{
		ID:        uuid.New(),
		Name:      params.Name,
		DID:       did.StripFragment(params.DID),
		CompanyID: params.CompanyID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "persist user")
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// SetUserDID binds the DID the holder established to a local user. The DID is
// the join key the Disclosure Recorder resolves subjects by, so the fragment
// is stripped before storing.
func (s *Service) SetUserDID(ctx context.Context, id uuid.UUID, userDID string) (*User, error) {
	if userDID == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "did is required")
	}
	if err := s.users.PatchDID(ctx, id, did.StripFragment(userDID)); err != nil {
		return nil, storeError(err, "user")
	}
	return s.GetUser(ctx, id)
}

func storeError(err error, entity string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.New(domainerrors.CodeNotFound, entity+" not found")
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return domainerrors.New(domainerrors.CodeConflict, entity+" already exists")
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "load "+entity)
}

func registrationError(err error, msg string) error {
	var statusErr *authority.StatusError
	if errors.As(err, &statusErr) {
		return domainerrors.Wrap(err, domainerrors.CodeExternal, msg)
	}
	return err
}
