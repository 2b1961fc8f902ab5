// Package shared centralizes JSON responses and domain error translation for
// the HTTP layer.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerrors "veriport/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// best-effort fallback; don't override status for the caller
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// WriteError translates transport-agnostic domain errors into HTTP status
// codes and a JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, StatusForCode(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(domainerrors.CodeInternal),
	})
}

// StatusForCode maps domain error codes to HTTP status codes. A rejected
// verification and a malformed envelope are both the caller's fault; a
// resolution failure is ours; an authority fault is a gateway problem.
func StatusForCode(code domainerrors.Code) int {
	switch code {
	case domainerrors.CodeNotFound:
		return http.StatusNotFound
	case domainerrors.CodeBadRequest, domainerrors.CodeValidation, domainerrors.CodeInvalidInput:
		return http.StatusBadRequest
	case domainerrors.CodeProtocol, domainerrors.CodeVerificationRejected:
		return http.StatusBadRequest
	case domainerrors.CodeConflict:
		return http.StatusConflict
	case domainerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainerrors.CodeForbidden:
		return http.StatusForbidden
	case domainerrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case domainerrors.CodeExternal:
		return http.StatusBadGateway
	case domainerrors.CodeResolutionFailed, domainerrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
