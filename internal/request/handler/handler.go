// Package handler exposes presentation request creation and lookup.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/request"
	"veriport/internal/transport/http/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *request.Service
}

func New(service *request.Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/presentationRequest", h.create)
	r.Get("/presentationRequest/{id}", h.get)
}

type requestView struct {
	ID                 uuid.UUID                   `json:"uuid"`
	VerifierID         uuid.UUID                   `json:"verifierUuid"`
	HolderAppID        uuid.UUID                   `json:"holderAppUuid"`
	CredentialRequests []request.CredentialRequest `json:"credentialRequests"`
	Metadata           map[string]any              `json:"metadata,omitempty"`
	Deeplink           string                      `json:"deeplink,omitempty"`
	QRCode             string                      `json:"qrCode,omitempty"`
}

func toView(record *request.PresentationRequest) requestView {
	return requestView{
		ID:                 record.ID,
		VerifierID:         record.VerifierID,
		HolderAppID:        record.HolderAppID,
		CredentialRequests: record.CredentialRequests,
		Metadata:           record.Metadata,
		Deeplink:           record.Deeplink,
		QRCode:             record.QRCode,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VerifierID      uuid.UUID      `json:"verifierUuid"`
		HolderAppID     uuid.UUID      `json:"holderAppUuid"`
		IssuerIDs       []uuid.UUID    `json:"issuerUuids"`
		CredentialTypes []string       `json:"credentialTypes"`
		Metadata        map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid request body"))
		return
	}

	record, err := h.service.Create(r.Context(), request.CreateParams{
		VerifierID:      body.VerifierID,
		HolderAppID:     body.HolderAppID,
		IssuerIDs:       body.IssuerIDs,
		CredentialTypes: body.CredentialTypes,
		Metadata:        body.Metadata,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "presentation request creation failed",
			slog.String("error", err.Error()))
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toView(record))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid id"))
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toView(record))
}
