// Package handler is the HTTP surface of the verification pipeline.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/go-chi/chi/v5"

	"veriport/pkg/device"
	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/platform/middleware"
	"veriport/internal/presentation"
	"veriport/internal/transport/http/shared"
)

// Service is the verification pipeline as the HTTP layer sees it.
type Service interface {
	VerifyV1(ctx context.Context, version string, envelope presentation.V1Envelope) (*presentation.Response, error)
	VerifyV2(ctx context.Context, version string, envelope presentation.V2Envelope) (*presentation.Response, error)
	VerifyV3(ctx context.Context, version string, envelope presentation.V2Envelope) (*presentation.Response, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the presentation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/presentation", h.handleLegacy)
	r.Post("/presentationV2", h.handleV2)
	r.Post("/presentationV3", h.handleV3)
}

// handleLegacy serves first- and second-generation clients on the original
// endpoint, dispatching on the version header. Third-generation clients are
// told to use the dedicated endpoint.
func (h *Handler) handleLegacy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path, version, err := presentation.RouteLegacy(r.Header.Get("version"))
	if err != nil {
		h.logRejectedRoute(r, err)
		shared.WriteError(w, err)
		return
	}

	h.logInbound(r, version.String())

	var response *presentation.Response
	switch path {
	case presentation.PathV1:
		var envelope presentation.V1Envelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeProtocol, "invalid request body"))
			return
		}
		response, err = h.service.VerifyV1(ctx, version.String(), envelope)
	default:
		var envelope presentation.V2Envelope
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeProtocol, "invalid request body"))
			return
		}
		response, err = h.service.VerifyV2(ctx, version.String(), envelope)
	}
	if err != nil {
		h.logFailed(r, err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) handleV2(w http.ResponseWriter, r *http.Request) {
	h.handleEncrypted(w, r, presentation.RouteV2, h.service.VerifyV2)
}

func (h *Handler) handleV3(w http.ResponseWriter, r *http.Request) {
	h.handleEncrypted(w, r, presentation.RouteV3, h.service.VerifyV3)
}

func (h *Handler) handleEncrypted(
	w http.ResponseWriter,
	r *http.Request,
	route func(string) (*semver.Version, error),
	verify func(ctx context.Context, version string, envelope presentation.V2Envelope) (*presentation.Response, error),
) {
	ctx := r.Context()
	version, err := route(r.Header.Get("version"))
	if err != nil {
		h.logRejectedRoute(r, err)
		shared.WriteError(w, err)
		return
	}

	h.logInbound(r, version.String())

	var envelope presentation.V2Envelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeProtocol, "invalid request body"))
		return
	}

	response, err := verify(ctx, version.String(), envelope)
	if err != nil {
		h.logFailed(r, err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) logInbound(r *http.Request, version string) {
	meta := device.Parse(r.UserAgent())
	h.logger.InfoContext(r.Context(), "inbound presentation",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("endpoint", r.URL.Path),
		slog.String("version", version),
		slog.String("client_os", meta.OS),
		slog.String("client_browser", meta.Browser),
	)
}

func (h *Handler) logRejectedRoute(r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "rejected presentation routing",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("endpoint", r.URL.Path),
		slog.String("version_header", r.Header.Get("version")),
		slog.String("error", err.Error()),
	)
}

func (h *Handler) logFailed(r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "presentation verification failed",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("endpoint", r.URL.Path),
		slog.String("error", err.Error()),
	)
}
