package authority

import "encoding/json"

// VerifyPlaintextRequest is the body sent to /api/verifyPresentation for the
// oldest protocol generation, where the holder posts the presentation in the
// clear.
type VerifyPlaintextRequest struct {
	Presentation json.RawMessage `json:"presentation"`
	VerifierDID  string          `json:"verifier"`
}

// VerifyNoPresentationRequest is the body sent to /api/verifyNoPresentation
// when a holder declines to share.
type VerifyNoPresentationRequest struct {
	NoPresentation json.RawMessage `json:"noPresentation"`
	VerifierDID    string          `json:"verifier"`
}

// VerifyEncryptedRequest is the body sent to /api/verifyEncryptedPresentation.
// The authority decrypts with the verifier's key and returns the decrypted
// presentation alongside the verdict.
type VerifyEncryptedRequest struct {
	EncryptedPresentation json.RawMessage `json:"encryptedPresentation"`
	VerifierDID           string          `json:"verifier"`
	EncryptionPrivateKey  string          `json:"encryptionPrivateKey"`
}

// VerifyResult is the authority's verdict. Presentation holds the decrypted
// (or echoed) presentation document on success.
type VerifyResult struct {
	IsVerified   bool            `json:"isVerified"`
	Type         string          `json:"type"`
	Message      string          `json:"message,omitempty"`
	Presentation json.RawMessage `json:"presentation,omitempty"`
}

// CredentialRequestOptions is one requested credential type in a sendRequest
// call.
type CredentialRequestOptions struct {
	Type     string   `json:"type"`
	Issuers  []string `json:"issuers"`
	Required bool     `json:"required"`
}

// SendRequestOptions is the body for /api/sendRequest.
type SendRequestOptions struct {
	VerifierDID        string                     `json:"verifier"`
	CredentialRequests []CredentialRequestOptions `json:"credentialRequests"`
	ECCPrivateKey      string                     `json:"eccPrivateKey"`
	Metadata           map[string]any             `json:"metadata,omitempty"`
}

// SendRequestResult is the authority's created presentation request.
type SendRequestResult struct {
	ID       string          `json:"uuid"`
	Deeplink string          `json:"deeplink"`
	QRCode   string          `json:"qrCode"`
	Raw      json.RawMessage `json:"-"`
}

// RegisterOptions is the body for /api/register on either authority.
type RegisterOptions struct {
	Name         string `json:"name"`
	APIKey       string `json:"apiKey"`
	CustomerID   string `json:"customerUuid"`
	URL          string `json:"url,omitempty"`
	VersionTagID string `json:"versionInfo,omitempty"`
}

// RegisterResult carries the identity the authority minted.
type RegisterResult struct {
	Name string `json:"name"`
	DID  string `json:"did"`
	Keys struct {
		Signing struct {
			PrivateKey string `json:"privateKey"`
		} `json:"signing"`
		Encryption struct {
			PrivateKey string `json:"privateKey"`
		} `json:"encryption"`
	} `json:"keys"`
}

// HolderAppOptions is the body for the SaaS /holderApp registration.
type HolderAppOptions struct {
	Name       string `json:"name"`
	URIScheme  string `json:"uriScheme"`
	CustomerID string `json:"customerUuid"`
}

// HolderAppResult is the SaaS side's record of the registered holder app.
type HolderAppResult struct {
	ID string `json:"uuid"`
}
