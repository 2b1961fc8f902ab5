package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriport/internal/authority"
	"veriport/internal/registry"
	"veriport/internal/request"
	"veriport/internal/token"
)

type stubAuthority struct {
	outcome *authority.SendRequestOutcome
	err     error
}

func (s *stubAuthority) SendRequest(context.Context, string, authority.SendRequestOptions) (*authority.SendRequestOutcome, error) {
	return s.outcome, s.err
}

type fixture struct {
	srv       *httptest.Server
	verifier  *registry.Verifier
	issuer    *registry.Issuer
	holderApp *registry.HolderApp
	store     *request.InMemoryStore
}

func newFixture(t *testing.T, client *stubAuthority) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.NewInMemoryStore()
	store := request.NewInMemoryStore()
	custodian := token.NewCustodian(reg.Verifiers(), logger, nil)
	service := request.NewService(store, reg.Verifiers(), reg.Issuers(), reg.HolderApps(),
		custodian, client, logger)

	ctx := context.Background()
	verifier := &registry.Verifier{ID: uuid.New(), DID: "did:example:verifier", SigningKey: "key", AuthToken: "tok"}
	require.NoError(t, reg.Verifiers().Create(ctx, verifier))
	issuer := &registry.Issuer{ID: uuid.New(), DID: "did:example:issuer"}
	require.NoError(t, reg.Issuers().Create(ctx, issuer))
	holderApp := &registry.HolderApp{ID: uuid.New(), Name: "wallet"}
	require.NoError(t, reg.HolderApps().Create(ctx, holderApp))

	r := chi.NewRouter()
	New(service, logger).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, verifier: verifier, issuer: issuer, holderApp: holderApp, store: store}
}

func (f *fixture) createBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"verifierUuid":    f.verifier.ID,
		"holderAppUuid":   f.holderApp.ID,
		"issuerUuids":     []uuid.UUID{f.issuer.ID},
		"credentialTypes": []string{"DriverLicense"},
		"metadata":        map[string]any{"userUuid": "user-1"},
	})
	return body
}

func TestCreatePresentationRequest(t *testing.T) {
	requestID := uuid.New()
	client := &stubAuthority{outcome: &authority.SendRequestOutcome{
		Result: authority.SendRequestResult{
			ID:       requestID.String(),
			Deeplink: "wallet://request/" + requestID.String(),
			QRCode:   "data:image/png;base64,abc",
		},
	}}
	f := newFixture(t, client)

	resp, err := http.Post(f.srv.URL+"/presentationRequest", "application/json", bytes.NewReader(f.createBody()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, requestID.String(), view["uuid"])
	assert.Equal(t, "wallet://request/"+requestID.String(), view["deeplink"])

	stored, err := f.store.FindByID(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, f.verifier.ID, stored.VerifierID)
}

func TestCreateUnknownVerifier(t *testing.T) {
	f := newFixture(t, &stubAuthority{})

	body, _ := json.Marshal(map[string]any{
		"verifierUuid":    uuid.New(),
		"holderAppUuid":   f.holderApp.ID,
		"issuerUuids":     []uuid.UUID{f.issuer.ID},
		"credentialTypes": []string{"DriverLicense"},
	})
	resp, err := http.Post(f.srv.URL+"/presentationRequest", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPresentationRequest(t *testing.T) {
	f := newFixture(t, &stubAuthority{})
	record := &request.PresentationRequest{ID: uuid.New(), VerifierID: f.verifier.ID}
	require.NoError(t, f.store.Create(context.Background(), record))

	resp, err := http.Get(f.srv.URL + "/presentationRequest/" + record.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.srv.URL + "/presentationRequest/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.srv.URL + "/presentationRequest/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
