// Package authority is the outbound HTTP client for the external verification
// authority and the SaaS. The authority may re-issue the caller's auth token on
// any response via the x-auth-token header, so every call surfaces that header
// to the caller even when the HTTP status is an error.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/platform/config"
	"veriport/internal/platform/metrics"
	"veriport/internal/platform/tracer"
)

const authTokenHeader = "x-auth-token"

// StatusError is a non-2xx response from the authority. The caller decides
// what a given status means for its operation; a 400 on a verify call is a
// rejected presentation, not a transport fault.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("authority returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the issuer/verifier authorities and the SaaS. No automatic
// retry: the verify calls are not idempotent upstream.
type Client struct {
	verifierURL string
	issuerURL   string
	saasURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTracer sets the tracer used around outbound calls.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

func NewClient(cfg config.Authority, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Client {
	c := &Client{
		verifierURL: cfg.VerifierURL,
		issuerURL:   cfg.IssuerURL,
		saasURL:     cfg.SaasURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		metrics:     m,
		tracer:      tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyOutcome pairs a verify verdict with the token the authority handed
// back. NewAuthToken is set whenever the response carried one, including on
// negative verdicts and error statuses.
type VerifyOutcome struct {
	Result       VerifyResult
	NewAuthToken string
}

// VerifyPresentation submits a plaintext presentation for verification.
func (c *Client) VerifyPresentation(ctx context.Context, authToken, version string, req VerifyPlaintextRequest) (*VerifyOutcome, error) {
	return c.verify(ctx, "verifyPresentation", c.verifierURL+"/api/verifyPresentation", authToken, version, req)
}

// VerifyNoPresentation submits a holder's signed refusal for verification.
func (c *Client) VerifyNoPresentation(ctx context.Context, authToken, version string, req VerifyNoPresentationRequest) (*VerifyOutcome, error) {
	return c.verify(ctx, "verifyNoPresentation", c.verifierURL+"/api/verifyNoPresentation", authToken, version, req)
}

// VerifyEncryptedPresentation submits an encrypted presentation together with
// the verifier's decryption key.
func (c *Client) VerifyEncryptedPresentation(ctx context.Context, authToken, version string, req VerifyEncryptedRequest) (*VerifyOutcome, error) {
	return c.verify(ctx, "verifyEncryptedPresentation", c.verifierURL+"/api/verifyEncryptedPresentation", authToken, version, req)
}

func (c *Client) verify(ctx context.Context, operation, url, authToken, version string, body any) (*VerifyOutcome, error) {
	resp, err := c.post(ctx, operation, url, authToken, version, body)
	if err != nil {
		return nil, err
	}

	outcome := &VerifyOutcome{NewAuthToken: resp.newAuthToken}
	if resp.statusCode < 200 || resp.statusCode > 299 {
		return outcome, &StatusError{StatusCode: resp.statusCode, Body: resp.body}
	}
	if err := json.Unmarshal(resp.body, &outcome.Result); err != nil {
		return outcome, domainerrors.Wrap(err, domainerrors.CodeExternal, "malformed verdict from authority")
	}
	return outcome, nil
}

// SendRequestOutcome pairs a created presentation request with the re-issued
// token, if any. Raw preserves the full authority payload for persistence.
type SendRequestOutcome struct {
	Result       SendRequestResult
	Raw          json.RawMessage
	NewAuthToken string
}

// SendRequest asks the authority to mint a presentation request.
func (c *Client) SendRequest(ctx context.Context, authToken string, opts SendRequestOptions) (*SendRequestOutcome, error) {
	resp, err := c.post(ctx, "sendRequest", c.verifierURL+"/api/sendRequest", authToken, "", opts)
	if err != nil {
		return nil, err
	}

	outcome := &SendRequestOutcome{NewAuthToken: resp.newAuthToken}
	if resp.statusCode < 200 || resp.statusCode > 299 {
		return outcome, &StatusError{StatusCode: resp.statusCode, Body: resp.body}
	}
	if err := json.Unmarshal(resp.body, &outcome.Result); err != nil {
		return outcome, domainerrors.Wrap(err, domainerrors.CodeExternal, "malformed sendRequest response")
	}
	outcome.Raw = resp.body
	return outcome, nil
}

// RegisterOutcome pairs a minted identity with its initial auth token.
type RegisterOutcome struct {
	Result    RegisterResult
	AuthToken string
}

// RegisterVerifier registers a new verifier with the verifier authority.
func (c *Client) RegisterVerifier(ctx context.Context, opts RegisterOptions) (*RegisterOutcome, error) {
	opts.URL = c.verifierURL + "/api/register"
	return c.register(ctx, "registerVerifier", opts.URL, opts)
}

// RegisterIssuer registers a new issuer with the issuer authority.
func (c *Client) RegisterIssuer(ctx context.Context, opts RegisterOptions) (*RegisterOutcome, error) {
	return c.register(ctx, "registerIssuer", c.issuerURL+"/api/register", opts)
}

func (c *Client) register(ctx context.Context, operation, url string, opts RegisterOptions) (*RegisterOutcome, error) {
	resp, err := c.post(ctx, operation, url, "", "", opts)
	if err != nil {
		return nil, err
	}
	if resp.statusCode < 200 || resp.statusCode > 299 {
		return nil, &StatusError{StatusCode: resp.statusCode, Body: resp.body}
	}

	outcome := &RegisterOutcome{AuthToken: resp.newAuthToken}
	if err := json.Unmarshal(resp.body, &outcome.Result); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "malformed register response")
	}
	return outcome, nil
}

// RegisterHolderApp registers a holder app with the SaaS using the company's
// API key.
func (c *Client) RegisterHolderApp(ctx context.Context, apiKey string, opts HolderAppOptions) (*HolderAppResult, error) {
	resp, err := c.post(ctx, "registerHolderApp", c.saasURL+"/holderApp", "Bearer "+apiKey, "", opts)
	if err != nil {
		return nil, err
	}
	if resp.statusCode < 200 || resp.statusCode > 299 {
		return nil, &StatusError{StatusCode: resp.statusCode, Body: resp.body}
	}

	var result HolderAppResult
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "malformed holderApp response")
	}
	return &result, nil
}

type response struct {
	statusCode   int
	body         []byte
	newAuthToken string
}

func (c *Client) post(ctx context.Context, operation, url, authToken, version string, body any) (*response, error) {
	ctx, span := c.tracer.Start(ctx, "authority."+operation, tracer.String("url", url))
	start := time.Now()
	resp, err := c.doPost(ctx, url, authToken, version, body)
	c.metrics.ObserveAuthorityCall(operation, time.Since(start).Seconds())
	span.End(err)

	if err != nil {
		c.logger.ErrorContext(ctx, "authority call failed",
			slog.String("operation", operation), slog.String("error", err.Error()))
	}
	return resp, err
}

func (c *Client) doPost(ctx context.Context, url, authToken, version string, body any) (*response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "marshal authority request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "build authority request")
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", authToken)
	}
	if version != "" {
		req.Header.Set("version", version)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeTimeout, "authority call timed out")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "authority unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "read authority response")
	}

	return &response{
		statusCode:   resp.StatusCode,
		body:         respBody,
		newAuthToken: resp.Header.Get(authTokenHeader),
	}, nil
}
