// Package presentation implements the verification pipeline: route the inbound
// envelope by protocol version, forward it to the external authority with the
// verifier's rotating token, record disclosed credentials, and notify the
// waiting user.
package presentation

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"
)

// Verdict kinds as the authority reports them.
const (
	KindVerifiablePresentation = "VerifiablePresentation"
	KindNoPresentation         = "NoPresentation"
	KindDeclined               = "DeclinedPresentationRequest"
)

// V1Envelope is the oldest wire shape: the holder posts the presentation (or
// a signed refusal) in the clear, bound to the request that asked for it.
// Exactly one of Presentation and NoPresentation is set.
type V1Envelope struct {
	Presentation          json.RawMessage `json:"presentation,omitempty"`
	NoPresentation        json.RawMessage `json:"noPresentation,omitempty"`
	PresentationRequestID uuid.UUID       `json:"presentationRequestId"`
}

// Validate checks the envelope carries exactly one payload and a request id.
func (e *V1Envelope) Validate() error {
	if e.PresentationRequestID == uuid.Nil {
		return domainerrors.New(domainerrors.CodeProtocol, "presentationRequestId is required")
	}
	hasPresentation := len(e.Presentation) > 0
	hasNoPresentation := len(e.NoPresentation) > 0
	if hasPresentation == hasNoPresentation {
		return domainerrors.New(domainerrors.CodeProtocol, "exactly one of presentation and noPresentation must be set")
	}
	return nil
}

// V2Envelope carries an encrypted presentation plus the request info that
// identifies which challenge it answers. Used by both the v2 and v3 paths.
type V2Envelope struct {
	PresentationRequestInfo PresentationRequestInfo `json:"presentationRequestInfo"`
	EncryptedPresentation   json.RawMessage         `json:"encryptedPresentation"`
}

// PresentationRequestInfo identifies the originating presentation request.
type PresentationRequestInfo struct {
	PresentationRequest struct {
		ID uuid.UUID `json:"uuid"`
	} `json:"presentationRequest"`
}

// Validate checks the envelope names its request and carries a payload.
func (e *V2Envelope) Validate() error {
	if e.PresentationRequestInfo.PresentationRequest.ID == uuid.Nil {
		return domainerrors.New(domainerrors.CodeProtocol, "presentationRequestInfo.presentationRequest.uuid is required")
	}
	if len(e.EncryptedPresentation) == 0 {
		return domainerrors.New(domainerrors.CodeProtocol, "encryptedPresentation is required")
	}
	return nil
}

// Credential is one verifiable credential disclosed inside a presentation.
// CredentialSubject arrives either as a JSON object or, on newer protocol
// generations, as a JSON string encoding that object.
type Credential struct {
	Issuer            string          `json:"issuer"`
	Type              []string        `json:"type"`
	CredentialSubject json.RawMessage `json:"credentialSubject"`
	raw               json.RawMessage
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	type alias Credential
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Credential(decoded)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the credential exactly as it arrived, for persistence.
func (c *Credential) Raw() json.RawMessage {
	if c.raw != nil {
		return c.raw
	}
	raw, _ := json.Marshal(c)
	return raw
}

// SubjectDID extracts the subject id, decoding the string-encoded
// credentialSubject variant when needed.
func (c *Credential) SubjectDID() (string, error) {
	subject := c.CredentialSubject
	if len(subject) == 0 {
		return "", fmt.Errorf("credential has no credentialSubject")
	}
	if subject[0] == '"' {
		var encoded string
		if err := json.Unmarshal(subject, &encoded); err != nil {
			return "", fmt.Errorf("decode credentialSubject string: %w", err)
		}
		subject = json.RawMessage(encoded)
	}
	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(subject, &decoded); err != nil {
		return "", fmt.Errorf("decode credentialSubject: %w", err)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("credentialSubject has no id")
	}
	return decoded.ID, nil
}

// Document is the decrypted (or plaintext) presentation the authority echoes
// back. The credentials field name changed between protocol generations.
type Document struct {
	Type                     []string     `json:"type"`
	VerifiableCredential     []Credential `json:"verifiableCredential,omitempty"`
	VerifiableCredentialsOld []Credential `json:"verifiableCredentials,omitempty"`
}

// Credentials returns the disclosed credentials regardless of which field the
// sending generation used.
func (d *Document) Credentials() []Credential {
	if len(d.VerifiableCredential) > 0 {
		return d.VerifiableCredential
	}
	return d.VerifiableCredentialsOld
}

// Verdict is the normalized outcome of one verification.
type Verdict struct {
	IsVerified      bool
	Kind            string
	SubjectDID      string
	CredentialTypes []string
	Message         string
}

// Receipt summarizes a settled verification for the caller and for the
// notified user.
type Receipt struct {
	SubjectDID      string    `json:"subjectDid,omitempty"`
	CredentialTypes []string  `json:"credentialTypes,omitempty"`
	VerifierDID     string    `json:"verifierDid"`
	HolderAppID     uuid.UUID `json:"holderApp"`
	IssuerDIDs      []string  `json:"issuers,omitempty"`
}

// Response is the synchronous reply to the holder or SaaS.
type Response struct {
	IsVerified            bool      `json:"isVerified"`
	Type                  string    `json:"type"`
	Receipt               *Receipt  `json:"presentationReceiptInfo,omitempty"`
	PresentationRequestID uuid.UUID `json:"presentationRequestUuid"`
}
