package authority

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/platform/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Authority{
		VerifierURL: srv.URL,
		IssuerURL:   srv.URL,
		SaasURL:     srv.URL,
		Timeout:     2 * time.Second,
	}
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil), srv
}

func TestVerifyPresentationSuccess(t *testing.T) {
	var gotAuth, gotVersion, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("version")
		gotPath = r.URL.Path
		w.Header().Set("x-auth-token", "reissued-token")
		json.NewEncoder(w).Encode(VerifyResult{
			IsVerified: true,
			Type:       "VerifiablePresentation",
		})
	})

	outcome, err := client.VerifyPresentation(context.Background(), "Bearer tok", "1.0.0", VerifyPlaintextRequest{
		Presentation: json.RawMessage(`{"proof":{}}`),
		VerifierDID:  "did:example:verifier",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/verifyPresentation", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "1.0.0", gotVersion)
	assert.True(t, outcome.Result.IsVerified)
	assert.Equal(t, "reissued-token", outcome.NewAuthToken)
}

func TestVerifyPresentationNegativeVerdictIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyResult{IsVerified: false, Message: "invalid proof"})
	})

	outcome, err := client.VerifyPresentation(context.Background(), "Bearer tok", "1.0.0", VerifyPlaintextRequest{})
	require.NoError(t, err)
	assert.False(t, outcome.Result.IsVerified)
	assert.Equal(t, "invalid proof", outcome.Result.Message)
}

func TestVerifySurfacesTokenOnErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-auth-token", "rotated-anyway")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad presentation"}`))
	})

	outcome, err := client.VerifyEncryptedPresentation(context.Background(), "Bearer tok", "2.0.0", VerifyEncryptedRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)

	require.NotNil(t, outcome)
	assert.Equal(t, "rotated-anyway", outcome.NewAuthToken)
}

func TestVerifyTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome, err := client.VerifyPresentation(ctx, "Bearer tok", "1.0.0", VerifyPlaintextRequest{})
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeTimeout))
}

func TestVerifyUnreachableAuthority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cfg := config.Authority{VerifierURL: srv.URL, Timeout: time.Second}
	client := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, err := client.VerifyPresentation(context.Background(), "Bearer tok", "1.0.0", VerifyPlaintextRequest{})
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeExternal))

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestSendRequest(t *testing.T) {
	var gotBody SendRequestOptions
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sendRequest", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("x-auth-token", "post-send-token")
		w.Write([]byte(`{"uuid":"req-1","deeplink":"app://req-1","qrCode":"data:image/png;base64,xyz"}`))
	})

	outcome, err := client.SendRequest(context.Background(), "Bearer tok", SendRequestOptions{
		VerifierDID: "did:example:verifier",
		CredentialRequests: []CredentialRequestOptions{
			{Type: "DriverLicense", Issuers: []string{"did:example:issuer"}, Required: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "did:example:verifier", gotBody.VerifierDID)
	assert.Equal(t, "req-1", outcome.Result.ID)
	assert.Equal(t, "app://req-1", outcome.Result.Deeplink)
	assert.Equal(t, "post-send-token", outcome.NewAuthToken)
	assert.JSONEq(t, `{"uuid":"req-1","deeplink":"app://req-1","qrCode":"data:image/png;base64,xyz"}`, string(outcome.Raw))
}

func TestRegisterVerifier(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/register", r.URL.Path)
		w.Header().Set("x-auth-token", "initial-token")
		w.Write([]byte(`{
			"name": "acme-checks",
			"did": "did:example:verifier",
			"keys": {"signing": {"privateKey": "sk"}, "encryption": {"privateKey": "ek"}}
		}`))
	})

	outcome, err := client.RegisterVerifier(context.Background(), RegisterOptions{
		Name: "acme-checks", APIKey: "api-key", CustomerID: "cust-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "did:example:verifier", outcome.Result.DID)
	assert.Equal(t, "sk", outcome.Result.Keys.Signing.PrivateKey)
	assert.Equal(t, "ek", outcome.Result.Keys.Encryption.PrivateKey)
	assert.Equal(t, "initial-token", outcome.AuthToken)
}

func TestRegisterHolderApp(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/holderApp", r.URL.Path)
		require.Equal(t, "Bearer company-api-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"uuid":"app-1"}`))
	})

	result, err := client.RegisterHolderApp(context.Background(), "company-api-key", HolderAppOptions{
		Name: "wallet", URIScheme: "wallet://", CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.ID)
}
