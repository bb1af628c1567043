package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/iam"
)

// stubAuthenticator scripts the authenticator outcome for middleware tests
type stubAuthenticator struct {
	supports  bool
	principal *iam.Principal
	err       error
	success   http.Handler

	failures  int
	firewalls []string
}

func (s *stubAuthenticator) Supports(iam.AuthRequest) bool { return s.supports }

func (s *stubAuthenticator) Authenticate(context.Context, iam.AuthRequest) (*iam.Principal, error) {
	return s.principal, s.err
}

func (s *stubAuthenticator) OnAuthenticationFailure(w http.ResponseWriter, _ *http.Request, failure *iam.AuthFailure) {
	s.failures++
	iam.WriteFailure(w, failure)
}

func (s *stubAuthenticator) OnAuthenticationSuccess(_ *http.Request, _ *iam.Principal, firewall string) http.Handler {
	s.firewalls = append(s.firewalls, firewall)
	return s.success
}

// echoPrincipal answers 200 with the username from the context, or 204 when absent
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := iam.PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(p.Username()))
	})
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_NotSupportedPassesThrough(t *testing.T) {
	stub := &stubAuthenticator{supports: false}
	metrics := NewAuthMetrics(prometheus.NewRegistry())

	rec := serve(Authenticate(stub, WithMetrics(metrics))(echoPrincipal()))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues(ResultAnonymous)))
}

func TestAuthenticate_FailureUsesAuthenticatorResponse(t *testing.T) {
	stub := &stubAuthenticator{
		supports: true,
		err:      iam.NewAuthFailure(iam.InvalidOrExpiredToken, errors.New("signature is invalid")),
	}
	metrics := NewAuthMetrics(prometheus.NewRegistry())
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rec := serve(Authenticate(stub, WithMetrics(metrics))(next))

	assert.False(t, called)
	assert.Equal(t, 1, stub.failures)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token"}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues(string(iam.InvalidOrExpiredToken))))
}

func TestAuthenticate_InfrastructureErrorIs500(t *testing.T) {
	stub := &stubAuthenticator{supports: true, err: errors.New("database is down")}
	metrics := NewAuthMetrics(prometheus.NewRegistry())

	rec := serve(Authenticate(stub, WithMetrics(metrics))(echoPrincipal()))

	assert.Equal(t, 0, stub.failures)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "database")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues(ResultError)))
}

func TestAuthenticate_SuccessStoresPrincipal(t *testing.T) {
	stub := &stubAuthenticator{
		supports:  true,
		principal: &iam.Principal{User: models.User{ID: "u1", Username: "alice"}},
	}
	metrics := NewAuthMetrics(prometheus.NewRegistry())

	rec := serve(Authenticate(stub, WithMetrics(metrics), WithFirewall("tasks"))(echoPrincipal()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
	assert.Equal(t, []string{"tasks"}, stub.firewalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.outcomes.WithLabelValues(ResultSuccess)))
}

func TestAuthenticate_SuccessHandlerShortCircuits(t *testing.T) {
	stub := &stubAuthenticator{
		supports:  true,
		principal: &iam.Principal{User: models.User{Username: "alice"}},
		success: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}),
	}

	rec := serve(Authenticate(stub)(echoPrincipal()))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{DefaultFirewall}, stub.firewalls)
}

func TestRequirePrincipal(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("missing", func(t *testing.T) {
		rec := serve(RequirePrincipal(ok))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"Authorization header not found"}`, rec.Body.String())
	})

	t.Run("present", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req = req.WithContext(iam.WithPrincipal(req.Context(), &iam.Principal{User: models.User{Username: "alice"}}))

		RequirePrincipal(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthenticate_WithRealAuthenticatorAndRequirePrincipal(t *testing.T) {
	stub := &stubAuthenticator{supports: false}
	h := Authenticate(stub)(RequirePrincipal(echoPrincipal()))

	rec := serve(h)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Authorization header not found"}`, rec.Body.String())
}

func TestAuthMetrics_NilSafe(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() { m.Observe(ResultSuccess) })
}
