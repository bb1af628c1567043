package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/iam"
)

// DefaultFirewall names the protected area passed to OnAuthenticationSuccess.
const DefaultFirewall = "api"

type authnOptions struct {
	firewall string
	logger   *zap.Logger
	metrics  *AuthMetrics
}

// AuthnOption configures the Authenticate middleware.
type AuthnOption func(*authnOptions)

// WithFirewall overrides the firewall name handed to the authenticator.
func WithFirewall(name string) AuthnOption {
	return func(o *authnOptions) { o.firewall = name }
}

// WithLogger sets the logger used for infrastructure errors.
func WithLogger(logger *zap.Logger) AuthnOption {
	return func(o *authnOptions) { o.logger = logger }
}

// WithMetrics records every outcome in m.
func WithMetrics(m *AuthMetrics) AuthnOption {
	return func(o *authnOptions) { o.metrics = m }
}

// Authenticate adapts an iam.Authenticator to chi middleware.
//
// Flow per request:
//  1. Supports false: the request continues without a principal
//  2. AuthFailure: OnAuthenticationFailure writes the response
//  3. Any other error: 500, details only in the log
//  4. Success: OnAuthenticationSuccess may short-circuit with its own handler,
//     otherwise the principal is stored in the context and next runs
func Authenticate(authenticator iam.Authenticator, opts ...AuthnOption) func(http.Handler) http.Handler {
	o := authnOptions{firewall: DefaultFirewall}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authReq := iam.NewAuthRequest(r)

			if !authenticator.Supports(authReq) {
				o.metrics.Observe(ResultAnonymous)
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), authReq)
			if err != nil {
				var failure *iam.AuthFailure
				if errors.As(err, &failure) {
					o.metrics.Observe(string(failure.Reason))
					authenticator.OnAuthenticationFailure(w, r, failure)
					return
				}

				o.metrics.Observe(ResultError)
				o.logger.Error("authentication error",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				writeInternalError(w)
				return
			}

			o.metrics.Observe(ResultSuccess)
			if h := authenticator.OnAuthenticationSuccess(r, principal, o.firewall); h != nil {
				h.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(iam.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePrincipal rejects requests that reached it without an authenticated
// principal, answering the same 401 body as a missing Authorization header.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := iam.PrincipalFromContext(r.Context()); !ok {
			iam.WriteFailure(w, iam.NewAuthFailure(iam.MissingHeader, nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "internal server error"})
}
