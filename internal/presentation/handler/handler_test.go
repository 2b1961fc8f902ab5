package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/presentation"
)

type stubService struct {
	v1Calls, v2Calls, v3Calls int
	gotVersion                string
	response                  *presentation.Response
	err                       error
}

func (s *stubService) VerifyV1(_ context.Context, version string, _ presentation.V1Envelope) (*presentation.Response, error) {
	s.v1Calls++
	s.gotVersion = version
	return s.response, s.err
}

func (s *stubService) VerifyV2(_ context.Context, version string, _ presentation.V2Envelope) (*presentation.Response, error) {
	s.v2Calls++
	s.gotVersion = version
	return s.response, s.err
}

func (s *stubService) VerifyV3(_ context.Context, version string, _ presentation.V2Envelope) (*presentation.Response, error) {
	s.v3Calls++
	s.gotVersion = version
	return s.response, s.err
}

func newTestServer(service Service) *httptest.Server {
	h := New(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return httptest.NewServer(r)
}

func post(t *testing.T, url, version, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if version != "" {
		req.Header.Set("version", version)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func v1Body() string {
	return `{"presentation":{"proof":{}},"presentationRequestId":"` + uuid.NewString() + `"}`
}

func v2Body() string {
	return `{"presentationRequestInfo":{"presentationRequest":{"uuid":"` + uuid.NewString() + `"}},"encryptedPresentation":{"data":"x"}}`
}

func TestLegacyEndpointDispatchesByVersion(t *testing.T) {
	service := &stubService{response: &presentation.Response{IsVerified: true, Type: "NoPresentation"}}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentation", "1.2.3", v1Body())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.v1Calls)
	assert.Equal(t, "1.2.3", service.gotVersion)

	resp = post(t, srv.URL+"/presentation", "2.1.0", v2Body())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.v2Calls)
	assert.Equal(t, 0, service.v3Calls)
}

func TestLegacyEndpointDefaultsToOldestVersion(t *testing.T) {
	service := &stubService{response: &presentation.Response{IsVerified: true}}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentation", "", v1Body())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.v1Calls)
	assert.Equal(t, "1.0.0", service.gotVersion)
}

func TestLegacyEndpointRejectsV3(t *testing.T) {
	service := &stubService{}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentation", "3.0.0", v2Body())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, service.v1Calls+service.v2Calls+service.v3Calls)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "protocol_error", body["error"])
	assert.Contains(t, body["error_description"], "v3 endpoint")
}

func TestLegacyEndpointRejectsMalformedVersion(t *testing.T) {
	service := &stubService{}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentation", "not-semver", v1Body())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, service.v1Calls+service.v2Calls)
}

func TestV3Endpoint(t *testing.T) {
	service := &stubService{response: &presentation.Response{IsVerified: true, Type: "VerifiablePresentation"}}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentationV3", "3.1.0", v2Body())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.v3Calls)

	resp = post(t, srv.URL+"/presentationV3", "2.0.0", v2Body())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, service.v3Calls)
}

func TestV2EndpointBounds(t *testing.T) {
	service := &stubService{response: &presentation.Response{IsVerified: true}}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentationV2", "2.3.0", v2Body())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, srv.URL+"/presentationV2", "1.0.0", v2Body())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1, service.v2Calls)
}

func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"rejected", domainerrors.New(domainerrors.CodeVerificationRejected, "verification failed"), http.StatusBadRequest},
		{"not found", domainerrors.New(domainerrors.CodeNotFound, "presentation request not found"), http.StatusNotFound},
		{"resolution failed", domainerrors.New(domainerrors.CodeResolutionFailed, "issuer not registered"), http.StatusInternalServerError},
		{"external", domainerrors.New(domainerrors.CodeExternal, "authority unreachable"), http.StatusBadGateway},
		{"timeout", domainerrors.New(domainerrors.CodeTimeout, "authority call timed out"), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubService{err: tt.err}
			srv := newTestServer(service)
			defer srv.Close()

			resp := post(t, srv.URL+"/presentation", "1.0.0", v1Body())
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	service := &stubService{}
	srv := newTestServer(service)
	defer srv.Close()

	resp := post(t, srv.URL+"/presentation", "1.0.0", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, service.v1Calls)
}
