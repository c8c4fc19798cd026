package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/martinmiralles/mar-pokemart/internal/auth"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/httputil"
	"github.com/martinmiralles/mar-pokemart/pkg/middleware"
)

// Authenticator resolves the bearer token on a request into a principal.
type Authenticator struct {
	verifier *auth.Verifier
	loader   *auth.IdentityLoader
	logger   *slog.Logger
	failures *prometheus.CounterVec
}

// NewAuthenticator creates the authentication middleware. A nil registerer
// skips metric registration.
func NewAuthenticator(verifier *auth.Verifier, loader *auth.IdentityLoader, reg prometheus.Registerer, logger *slog.Logger) *Authenticator {
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pokemart_auth_failures_total",
		Help: "Rejected authentication attempts by reason.",
	}, []string{"reason"})
	if reg != nil {
		reg.MustRegister(failures)
	}
	return &Authenticator{
		verifier: verifier,
		loader:   loader,
		logger:   logger,
		failures: failures,
	}
}

// Middleware verifies the Authorization header, loads the principal, and
// stores it in the request context. Any failure ends the request with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		principalID, err := a.verifier.Verify(r.Header.Get("Authorization"))
		if err != nil {
			a.reject(w, r, err)
			return
		}

		principal, err := a.loader.Load(ctx, principalID)
		if err != nil {
			a.reject(w, r, err)
			return
		}

		ctx = auth.WithPrincipal(ctx, principal)
		ctx = middleware.BindUser(ctx, principal.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err error) {
	reason := "error"
	switch {
	case errors.Is(err, apperrors.ErrNoCredential):
		reason = "no_credential"
	case errors.Is(err, apperrors.ErrInvalidCredential):
		reason = "invalid_credential"
	case errors.Is(err, apperrors.ErrPrincipalNotFound):
		reason = "principal_not_found"
	}
	a.failures.WithLabelValues(reason).Inc()

	if reason != "no_credential" {
		a.logger.WarnContext(r.Context(), "authentication failed",
			slog.String("reason", reason),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	httputil.WriteError(w, r, err, a.logger)
}

// RequireAdmin lets the request through only for an authenticated admin. It
// must be mounted after Authenticator.Middleware; without a principal it fails
// closed.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.RequireAdmin(auth.PrincipalFromContext(r.Context())); err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
