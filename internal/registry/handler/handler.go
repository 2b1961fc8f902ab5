// Package handler exposes the registry management endpoints. All routes are
// mounted behind the admin auth middleware by the router.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/registry"
	"veriport/internal/transport/http/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *registry.Service
}

func New(service *registry.Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/company", h.createCompany)
	r.Get("/company/{id}", h.getCompany)
	r.Post("/verifier", h.registerVerifier)
	r.Get("/verifier/{id}", h.getVerifier)
	r.Post("/issuer", h.registerIssuer)
	r.Get("/issuer/{id}", h.getIssuer)
	r.Post("/holderApp", h.registerHolderApp)
	r.Get("/holderApp/{id}", h.getHolderApp)
	r.Post("/user", h.createUser)
	r.Get("/user/{id}", h.getUser)
	r.Patch("/user/{id}", h.patchUser)
}

// Views keep key material and token state out of API responses. The holder
// app's plaintext API key appears once, in the create response.

type companyView struct {
	ID         uuid.UUID `json:"uuid"`
	Name       string    `json:"name"`
	CustomerID string    `json:"customerUuid"`
}

type verifierView struct {
	ID          uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	DID         string    `json:"did"`
	CallbackURL string    `json:"url,omitempty"`
	CompanyID   uuid.UUID `json:"companyUuid"`
}

type issuerView struct {
	ID        uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	DID       string    `json:"did"`
	URIScheme string    `json:"uriScheme,omitempty"`
	CompanyID uuid.UUID `json:"companyUuid"`
}

type holderAppView struct {
	ID        uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	URIScheme string    `json:"uriScheme"`
	APIKey    string    `json:"apiKey,omitempty"`
	CompanyID uuid.UUID `json:"companyUuid"`
}

type userView struct {
	ID        uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	DID       string    `json:"did,omitempty"`
	CompanyID uuid.UUID `json:"companyUuid"`
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		CustomerID string `json:"customerUuid"`
		APIKey     string `json:"apiKey"`
	}
	if !decode(w, r, &body) {
		return
	}

	company, err := h.service.CreateCompany(r.Context(), registry.CreateCompanyParams{
		Name:       body.Name,
		CustomerID: body.CustomerID,
		APIKey:     body.APIKey,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, companyView{
		ID: company.ID, Name: company.Name, CustomerID: company.CustomerID,
	})
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, companyView{
		ID: company.ID, Name: company.Name, CustomerID: company.CustomerID,
	})
}

func (h *Handler) registerVerifier(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string    `json:"name"`
		CompanyID   uuid.UUID `json:"companyUuid"`
		CallbackURL string    `json:"url"`
	}
	if !decode(w, r, &body) {
		return
	}

	verifier, err := h.service.RegisterVerifier(r.Context(), registry.RegisterVerifierParams{
		Name:        body.Name,
		CompanyID:   body.CompanyID,
		CallbackURL: body.CallbackURL,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, verifierToView(verifier))
}

func (h *Handler) getVerifier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	verifier, err := h.service.GetVerifier(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, verifierToView(verifier))
}

func (h *Handler) registerIssuer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string    `json:"name"`
		CompanyID uuid.UUID `json:"companyUuid"`
		URIScheme string    `json:"uriScheme"`
	}
	if !decode(w, r, &body) {
		return
	}

	issuer, err := h.service.RegisterIssuer(r.Context(), registry.RegisterIssuerParams{
		Name:      body.Name,
		CompanyID: body.CompanyID,
		URIScheme: body.URIScheme,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, issuerToView(issuer))
}

func (h *Handler) getIssuer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	issuer, err := h.service.GetIssuer(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, issuerToView(issuer))
}

func (h *Handler) registerHolderApp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string    `json:"name"`
		URIScheme string    `json:"uriScheme"`
		CompanyID uuid.UUID `json:"companyUuid"`
	}
	if !decode(w, r, &body) {
		return
	}

	app, apiKey, err := h.service.RegisterHolderApp(r.Context(), registry.RegisterHolderAppParams{
		Name:      body.Name,
		URIScheme: body.URIScheme,
		CompanyID: body.CompanyID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, holderAppView{
		ID: app.ID, Name: app.Name, URIScheme: app.URIScheme,
		APIKey: apiKey, CompanyID: app.CompanyID,
	})
}

func (h *Handler) getHolderApp(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	app, err := h.service.GetHolderApp(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, holderAppView{
		ID: app.ID, Name: app.Name, URIScheme: app.URIScheme, CompanyID: app.CompanyID,
	})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string    `json:"name"`
		CompanyID uuid.UUID `json:"companyUuid"`
		DID       string    `json:"did"`
	}
	if !decode(w, r, &body) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), registry.CreateUserParams{
		Name:      body.Name,
		CompanyID: body.CompanyID,
		DID:       body.DID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, userToView(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, userToView(user))
}

func (h *Handler) patchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		DID string `json:"did"`
	}
	if !decode(w, r, &body) {
		return
	}

	user, err := h.service.SetUserDID(r.Context(), id, body.DID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, userToView(user))
}

func verifierToView(v *registry.Verifier) verifierView {
	return verifierView{ID: v.ID, Name: v.Name, DID: v.DID, CallbackURL: v.CallbackURL, CompanyID: v.CompanyID}
}

func issuerToView(i *registry.Issuer) issuerView {
	return issuerView{ID: i.ID, Name: i.Name, DID: i.DID, URIScheme: i.URIScheme, CompanyID: i.CompanyID}
}

func userToView(u *registry.User) userView {
	return userView{ID: u.ID, Name: u.Name, DID: u.DID, CompanyID: u.CompanyID}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid request body"))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
