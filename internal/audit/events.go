// Package audit records what the verification pipeline decided. Events are
// emitted fail-open: a full buffer or a broken sink never affects the
// pipeline's response.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the pipeline decision being recorded.
type EventKind string

const (
	EventPresentationVerified EventKind = "presentation_verified"
	EventPresentationRejected EventKind = "presentation_rejected"
	EventDisclosureRecorded   EventKind = "disclosure_recorded"
	EventTokenRotated         EventKind = "token_rotated"
)

// Event is one audit trail entry. Details carries kind-specific fields
// (protocol path, credential count, subject DID).
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Kind       EventKind      `json:"kind"`
	VerifierID uuid.UUID      `json:"verifierId"`
	RequestID  string         `json:"requestId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewEvent stamps identity and time on an event.
func NewEvent(kind EventKind, verifierID uuid.UUID, requestID string, details map[string]any) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		VerifierID: verifierID,
		RequestID:  requestID,
		Details:    details,
		OccurredAt: time.Now().UTC(),
	}
}
