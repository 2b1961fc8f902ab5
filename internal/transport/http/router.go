// Package httptransport assembles the gateway's HTTP surface: the open
// presentation endpoints, the admin-guarded registry and ledger endpoints, and
// the operational endpoints.
package httptransport

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainerrors "veriport/pkg/domain-errors"

	"veriport/internal/platform/middleware"
	"veriport/internal/platform/redis"
	"veriport/internal/transport/http/shared"
)

const adminTokenTTL = time.Hour

// Registrar is anything that mounts routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// TokenIssuer mints admin bearer tokens.
type TokenIssuer interface {
	GenerateToken(subject string, expiresIn time.Duration) (string, error)
}

type Deps struct {
	Logger       *slog.Logger
	Presentation Registrar
	Registry     Registrar
	Requests     Registrar
	Admin        middleware.TokenValidator
	Tokens       TokenIssuer
	AdminSecret  string
	DB           *sql.DB
	Redis        *redis.Client
}

// NewRouter wires middleware and routes. Presentation endpoints stay open;
// the registry and the request ledger sit behind the admin JWT guard.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/health", healthHandler(deps.DB, deps.Redis))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/auth/token", adminTokenHandler(deps))

	deps.Presentation.Register(r)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(deps.Admin, deps.Logger))
		deps.Registry.Register(admin)
		deps.Requests.Register(admin)
	})

	return r
}

// adminTokenHandler exchanges the shared admin secret for a short-lived JWT.
// Disabled entirely when no secret is configured.
func adminTokenHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.AdminSecret == "" || deps.Tokens == nil {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "admin token issuance is disabled"))
			return
		}

		var body struct {
			Secret string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid request body"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(body.Secret), []byte(deps.AdminSecret)) != 1 {
			deps.Logger.WarnContext(r.Context(), "admin token request with wrong secret",
				slog.String("request_id", middleware.GetRequestID(r.Context())))
			shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "invalid secret"))
			return
		}

		token, err := deps.Tokens.GenerateToken("admin", adminTokenTTL)
		if err != nil {
			shared.WriteError(w, domainerrors.Wrap(err, domainerrors.CodeInternal, "issue admin token"))
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(adminTokenTTL.Seconds()),
		})
	}
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		healthy := true

		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		body := healthStatus{Status: "ok", Checks: checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			body.Status = "degraded"
		}
		shared.WriteJSON(w, status, body)
	}
}
