// Package request is the ledger of outstanding presentation requests: the
// challenges a verifier has sent to a holder. The pipeline reads it to recover
// the verifier, holder app, and correlated user for an inbound presentation.
package request

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// metadataUserKey is the correlation key the websocket/channel layer uses to
// find the user waiting on this request's result.
const metadataUserKey = "userUuid"

// CredentialRequest names one credential type the verifier asked for and the
// issuers it will accept it from.
type CredentialRequest struct {
	Type     string   `json:"type"`
	Issuers  []string `json:"issuers"`
	Required bool     `json:"required"`
}

// PresentationRequest is immutable once created.
type PresentationRequest struct {
	ID                 uuid.UUID
	VerifierID         uuid.UUID
	HolderAppID        uuid.UUID
	CredentialRequests []CredentialRequest
	Proof              json.RawMessage
	Metadata           map[string]any
	Deeplink           string
	QRCode             string
	Data               json.RawMessage
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CorrelatedUserID returns the user waiting for this request's verdict, if the
// request carries one.
func (r *PresentationRequest) CorrelatedUserID() (string, bool) {
	if r.Metadata == nil {
		return "", false
	}
	userID, ok := r.Metadata[metadataUserKey].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
