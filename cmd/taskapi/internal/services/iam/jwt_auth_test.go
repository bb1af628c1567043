package iam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/auth"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

var testSecret = []byte("jwt-auth-test-secret")

// mockUserLookup for testing
type mockUserLookup struct {
	users map[string]*models.User // username → user
	err   error
	calls int
}

func (m *mockUserLookup) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user with username %s: %w", username, repository.ErrNotFound)
}

// nilUserLookup reports misses as (nil, nil)
type nilUserLookup struct{}

func (nilUserLookup) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, nil
}

func newTestAuthenticator(t *testing.T, lookup UserLookup) (*JWTAuthenticator, *auth.TokenCodec) {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	authenticator, err := NewJWTAuthenticator(codec, lookup, nil)
	require.NoError(t, err)
	return authenticator, codec
}

func requestWithHeader(values ...string) AuthRequest {
	h := http.Header{}
	for _, v := range values {
		h.Add("Authorization", v)
	}
	return AuthRequest{Headers: h}
}

func aliceLookup() *mockUserLookup {
	return &mockUserLookup{users: map[string]*models.User{
		"alice": {ID: "019a0000-0000-7000-8000-00000000a11c", Username: "alice", Email: "alice@example.com"},
	}}
}

func TestNewJWTAuthenticator_RequiresCollaborators(t *testing.T) {
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)

	_, err = NewJWTAuthenticator(nil, aliceLookup(), nil)
	assert.Error(t, err)

	_, err = NewJWTAuthenticator(codec, nil, nil)
	assert.Error(t, err)
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	authenticator, _ := newTestAuthenticator(t, aliceLookup())

	assert.False(t, authenticator.Supports(AuthRequest{Headers: http.Header{}}))
	assert.False(t, authenticator.Supports(AuthRequest{Headers: http.Header{"X-Other": {"1"}}}))
	assert.True(t, authenticator.Supports(requestWithHeader("Bearer abc")))
	assert.True(t, authenticator.Supports(requestWithHeader("garbage")))
	assert.True(t, authenticator.Supports(requestWithHeader("")))
}

func TestJWTAuthenticator_Authenticate_Success(t *testing.T) {
	lookup := aliceLookup()
	authenticator, codec := newTestAuthenticator(t, lookup)

	token, issued, err := codec.Issue("alice", time.Hour)
	require.NoError(t, err)

	principal, err := authenticator.Authenticate(context.Background(), requestWithHeader("Bearer "+token))
	require.NoError(t, err)
	require.NotNil(t, principal)

	assert.Equal(t, "alice", principal.Username())
	assert.Equal(t, "019a0000-0000-7000-8000-00000000a11c", principal.UserID())
	assert.Equal(t, "alice@example.com", principal.User.Email)
	assert.Equal(t, issued.TokenID(), principal.TokenID)
	assert.True(t, issued.ExpiresAt.Time.Equal(principal.ExpiresAt))
	assert.Equal(t, 1, lookup.calls)
}

func TestJWTAuthenticator_Authenticate_Failures(t *testing.T) {
	lookup := aliceLookup()
	authenticator, codec := newTestAuthenticator(t, lookup)

	valid, err := codec.Encode(auth.Claims{Username: "alice"})
	require.NoError(t, err)

	unknownUser, err := codec.Encode(auth.Claims{Username: "mallory"})
	require.NoError(t, err)

	otherCodec, err := auth.NewTokenCodec([]byte("some-other-secret"))
	require.NoError(t, err)
	wrongSecret, err := otherCodec.Encode(auth.Claims{Username: "alice"})
	require.NoError(t, err)

	expired, err := codec.Encode(auth.Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     AuthRequest
		reason  FailureReason
		message string
	}{
		{
			name:    "no header",
			req:     AuthRequest{Headers: http.Header{}},
			reason:  MissingHeader,
			message: "Authorization header not found",
		},
		{
			name:    "empty header",
			req:     requestWithHeader(""),
			reason:  MissingHeader,
			message: "Authorization header not found",
		},
		{
			name:    "basic scheme",
			req:     requestWithHeader("Basic dXNlcjpwYXNz"),
			reason:  MalformedHeader,
			message: "Invalid Authorization header format",
		},
		{
			name:    "lowercase bearer",
			req:     requestWithHeader("bearer " + valid),
			reason:  MalformedHeader,
			message: "Invalid Authorization header format",
		},
		{
			name:    "bearer without token",
			req:     requestWithHeader("Bearer"),
			reason:  MalformedHeader,
			message: "Invalid Authorization header format",
		},
		{
			name:    "bearer with two tokens",
			req:     requestWithHeader("Bearer one two"),
			reason:  MalformedHeader,
			message: "Invalid Authorization header format",
		},
		{
			name:    "token without scheme",
			req:     requestWithHeader(valid),
			reason:  MalformedHeader,
			message: "Invalid Authorization header format",
		},
		{
			name:    "malformed jwt",
			req:     requestWithHeader("Bearer abc.def.ghi"),
			reason:  InvalidOrExpiredToken,
			message: "Invalid or expired token",
		},
		{
			name:    "wrong secret",
			req:     requestWithHeader("Bearer " + wrongSecret),
			reason:  InvalidOrExpiredToken,
			message: "Invalid or expired token",
		},
		{
			name:    "expired",
			req:     requestWithHeader("Bearer " + expired),
			reason:  InvalidOrExpiredToken,
			message: "Invalid or expired token",
		},
		{
			name:    "unknown user",
			req:     requestWithHeader("Bearer " + unknownUser),
			reason:  UserNotFound,
			message: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := authenticator.Authenticate(context.Background(), tt.req)
			assert.Nil(t, principal)

			var failure *AuthFailure
			require.True(t, errors.As(err, &failure), "expected *AuthFailure, got %v", err)
			assert.Equal(t, tt.reason, failure.Reason)
			assert.Equal(t, tt.message, failure.Message())
		})
	}
}

func TestJWTAuthenticator_InvalidTokenSkipsLookup(t *testing.T) {
	lookup := aliceLookup()
	authenticator, _ := newTestAuthenticator(t, lookup)

	_, err := authenticator.Authenticate(context.Background(), requestWithHeader("Bearer abc.def.ghi"))
	require.Error(t, err)
	assert.Equal(t, 0, lookup.calls)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTAuthenticator_NilUserIsNotFound(t *testing.T) {
	authenticator, codec := newTestAuthenticator(t, nilUserLookup{})

	token, err := codec.Encode(auth.Claims{Username: "alice"})
	require.NoError(t, err)

	_, err = authenticator.Authenticate(context.Background(), requestWithHeader("Bearer "+token))
	var failure *AuthFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, UserNotFound, failure.Reason)
}

func TestJWTAuthenticator_LookupErrorIsNotAnAuthFailure(t *testing.T) {
	boom := errors.New("connection refused")
	authenticator, codec := newTestAuthenticator(t, &mockUserLookup{err: boom})

	token, err := codec.Encode(auth.Claims{Username: "alice"})
	require.NoError(t, err)

	principal, err := authenticator.Authenticate(context.Background(), requestWithHeader("Bearer "+token))
	assert.Nil(t, principal)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var failure *AuthFailure
	assert.False(t, errors.As(err, &failure))
}

func TestJWTAuthenticator_RoundTripSecrets(t *testing.T) {
	authenticator, _ := newTestAuthenticator(t, aliceLookup())

	sameSecret, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	token, _, err := sameSecret.Issue("alice", time.Minute)
	require.NoError(t, err)

	principal, err := authenticator.Authenticate(context.Background(), requestWithHeader("Bearer "+token))
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.Username())

	differentSecret, err := auth.NewTokenCodec([]byte("not-the-server-secret"))
	require.NoError(t, err)
	token, _, err = differentSecret.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = authenticator.Authenticate(context.Background(), requestWithHeader("Bearer "+token))
	var failure *AuthFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, InvalidOrExpiredToken, failure.Reason)
}

func TestJWTAuthenticator_OnAuthenticationFailure(t *testing.T) {
	authenticator, _ := newTestAuthenticator(t, aliceLookup())

	reasons := map[FailureReason]string{
		MissingHeader:         `{"message":"Authorization header not found"}`,
		MalformedHeader:       `{"message":"Invalid Authorization header format"}`,
		InvalidOrExpiredToken: `{"message":"Invalid or expired token"}`,
		UserNotFound:          `{"message":"User not found"}`,
	}

	for reason, body := range reasons {
		t.Run(string(reason), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)

			authenticator.OnAuthenticationFailure(rec, req, NewAuthFailure(reason, errors.New("hidden detail")))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, body, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "hidden detail")
		})
	}
}

func TestJWTAuthenticator_OnAuthenticationSuccess(t *testing.T) {
	authenticator, _ := newTestAuthenticator(t, aliceLookup())
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)

	assert.Nil(t, authenticator.OnAuthenticationSuccess(req, &Principal{}, "api"))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "Bearer  abc", token: "abc", ok: true},
		{header: "Bearer\tabc", token: "abc", ok: true},
		{header: "Bearer abc ", token: "abc", ok: true},
		{header: "Bearer ", ok: false},
		{header: "BEARER abc", ok: false},
		{header: "Token abc", ok: false},
		{header: "xBearer abc", ok: false},
		{header: "Bearer a b", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := ExtractBearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), nil)
	_, ok = PrincipalFromContext(ctx)
	assert.False(t, ok)

	p := &Principal{User: models.User{Username: "alice"}}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Same(t, p, got)

	var nilPrincipal *Principal
	assert.Empty(t, nilPrincipal.Username())
	assert.Empty(t, nilPrincipal.UserID())
}
