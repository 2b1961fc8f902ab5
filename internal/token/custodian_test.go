package token

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veriport/internal/registry"
)

type CustodianSuite struct {
	suite.Suite
	store     *registry.InMemoryStore
	custodian *Custodian
	verifier  *registry.Verifier
}

func TestCustodianSuite(t *testing.T) {
	suite.Run(t, new(CustodianSuite))
}

func (s *CustodianSuite) SetupTest() {
	s.store = registry.NewInMemoryStore()
	s.custodian = NewCustodian(s.store.Verifiers(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	s.verifier = &registry.Verifier{
		ID:        uuid.New(),
		Name:      "acme-checks",
		DID:       "did:example:verifier",
		AuthToken: "initial-token",
	}
	s.Require().NoError(s.store.Verifiers().Create(context.Background(), s.verifier))
}

func (s *CustodianSuite) TestCurrentAddsBearerPrefix() {
	got, err := s.custodian.Current(context.Background(), s.verifier.ID)
	s.Require().NoError(err)
	s.Equal("Bearer initial-token", got)
}

func (s *CustodianSuite) TestCurrentKeepsExistingPrefix() {
	ctx := context.Background()
	s.Require().NoError(s.custodian.Rotate(ctx, s.verifier.ID, "Bearer already-prefixed"))

	got, err := s.custodian.Current(ctx, s.verifier.ID)
	s.Require().NoError(err)
	s.Equal("Bearer already-prefixed", got)
}

func (s *CustodianSuite) TestCurrentUnknownVerifier() {
	_, err := s.custodian.Current(context.Background(), uuid.New())
	s.Error(err)
}

func (s *CustodianSuite) TestRotatePersists() {
	ctx := context.Background()
	s.Require().NoError(s.custodian.Rotate(ctx, s.verifier.ID, "fresh-token"))

	got, err := s.custodian.Current(ctx, s.verifier.ID)
	s.Require().NoError(err)
	s.Equal("Bearer fresh-token", got)
}

func (s *CustodianSuite) TestRotateEmptyTokenIsNoop() {
	ctx := context.Background()
	s.Require().NoError(s.custodian.Rotate(ctx, s.verifier.ID, ""))

	got, err := s.custodian.Current(ctx, s.verifier.ID)
	s.Require().NoError(err)
	s.Equal("Bearer initial-token", got)
}

func (s *CustodianSuite) TestConcurrentRotationsLastWriteWins() {
	ctx := context.Background()
	s.Require().NoError(s.custodian.Rotate(ctx, s.verifier.ID, "token-a"))
	s.Require().NoError(s.custodian.Rotate(ctx, s.verifier.ID, "token-b"))

	got, err := s.custodian.Current(ctx, s.verifier.ID)
	s.Require().NoError(err)
	s.Equal("Bearer token-b", got)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"bare token", "abc123", "Bearer abc123"},
		{"already prefixed", "Bearer abc123", "Bearer abc123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.token); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}
