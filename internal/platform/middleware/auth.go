package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (subject string, err error)
}

// RequireAdmin guards the registry management endpoints with a JWT bearer token.
// Presentation endpoints stay open: inbound verification calls originate from
// the external authority, which authenticates at a different layer.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			if _, err := validator.ValidateToken(token); err != nil {
				logger.WarnContext(r.Context(), "unauthorized admin access",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
