//go:build integration

package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veriport/pkg/platform/sentinel"
	"veriport/pkg/testutil/containers"
)

type PostgresRegistrySuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *PostgresStore
	company *Company
}

func TestPostgresRegistrySuite(t *testing.T) {
	suite.Run(t, new(PostgresRegistrySuite))
}

func (s *PostgresRegistrySuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresRegistrySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateAll(ctx))

	s.company = &Company{ID: uuid.New(), Name: "acme", CustomerID: "customer-1", APIKey: "key"}
	s.Require().NoError(s.store.Create(ctx, s.company))
}

func (s *PostgresRegistrySuite) TestCompanyRoundTrip() {
	found, err := s.store.FindByID(context.Background(), s.company.ID)
	s.Require().NoError(err)
	s.Equal("acme", found.Name)
	s.Equal("customer-1", found.CustomerID)

	_, err = s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRegistrySuite) TestVerifierLifecycle() {
	ctx := context.Background()
	verifier := &Verifier{
		ID:            uuid.New(),
		Name:          "checkout",
		DID:           "did:example:verifier",
		SigningKey:    "sk",
		EncryptionKey: "ek",
		AuthToken:     "tok-1",
		CallbackURL:   "https://rp.example/cb",
		CompanyID:     s.company.ID,
	}
	s.Require().NoError(s.store.Verifiers().Create(ctx, verifier))

	found, err := s.store.Verifiers().FindByID(ctx, verifier.ID)
	s.Require().NoError(err)
	s.Equal("tok-1", found.AuthToken)
	s.Equal("ek", found.EncryptionKey)

	byDID, err := s.store.Verifiers().FindByDID(ctx, "did:example:verifier")
	s.Require().NoError(err)
	s.Equal(verifier.ID, byDID.ID)

	s.Require().NoError(s.store.Verifiers().PatchAuthToken(ctx, verifier.ID, "tok-2"))
	patched, err := s.store.Verifiers().FindByID(ctx, verifier.ID)
	s.Require().NoError(err)
	s.Equal("tok-2", patched.AuthToken)

	s.ErrorIs(s.store.Verifiers().PatchAuthToken(ctx, uuid.New(), "x"), sentinel.ErrNotFound)
}

func (s *PostgresRegistrySuite) TestIssuerLifecycle() {
	ctx := context.Background()
	issuer := &Issuer{
		ID:         uuid.New(),
		Name:       "dmv",
		DID:        "did:example:issuer",
		SigningKey: "sk",
		AuthToken:  "tok",
		URIScheme:  "dmv://",
		CompanyID:  s.company.ID,
	}
	s.Require().NoError(s.store.Issuers().Create(ctx, issuer))

	byDID, err := s.store.Issuers().FindByDID(ctx, "did:example:issuer")
	s.Require().NoError(err)
	s.Equal(issuer.ID, byDID.ID)

	_, err = s.store.Issuers().FindByDID(ctx, "did:example:unknown")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRegistrySuite) TestHolderAppRoundTrip() {
	ctx := context.Background()
	app := &HolderApp{
		ID:         uuid.New(),
		Name:       "wallet",
		URIScheme:  "wallet://",
		APIKeyHash: "$2a$10$hash",
		CompanyID:  s.company.ID,
	}
	s.Require().NoError(s.store.HolderApps().Create(ctx, app))

	found, err := s.store.HolderApps().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("$2a$10$hash", found.APIKeyHash)
}

func (s *PostgresRegistrySuite) TestUserDIDPatch() {
	ctx := context.Background()
	user := &User{ID: uuid.New(), Name: "alice", CompanyID: s.company.ID}
	s.Require().NoError(s.store.Users().Create(ctx, user))

	// DID is nullable until the holder establishes identity
	found, err := s.store.Users().FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(found.DID)

	s.Require().NoError(s.store.Users().PatchDID(ctx, user.ID, "did:example:alice"))
	byDID, err := s.store.Users().FindByDID(ctx, "did:example:alice")
	s.Require().NoError(err)
	s.Equal(user.ID, byDID.ID)
}
