package iam

import (
	"context"
	"net/http"
)

// Authenticator decides whether a request carries credentials it handles,
// resolves them to a Principal, and shapes the HTTP outcome.
//
// Return values of Authenticate:
//   - (principal, nil): authentication succeeded
//   - (nil, *AuthFailure): credentials rejected, render with OnAuthenticationFailure
//   - (nil, other error): infrastructure failure (e.g. database down)
type Authenticator interface {
	// Supports reports whether Authenticate should be attempted at all.
	Supports(req AuthRequest) bool

	// Authenticate validates credentials and returns the Principal.
	Authenticate(ctx context.Context, req AuthRequest) (*Principal, error)

	// OnAuthenticationFailure writes the terminal response for a failure.
	OnAuthenticationFailure(w http.ResponseWriter, r *http.Request, failure *AuthFailure)

	// OnAuthenticationSuccess may return a handler that short-circuits the
	// request. A nil handler lets the request continue.
	OnAuthenticationSuccess(r *http.Request, principal *Principal, firewall string) http.Handler
}

// AuthRequest carries the parts of an inbound request authenticators read.
type AuthRequest struct {
	// Headers contains HTTP headers (including Authorization)
	Headers http.Header
}

// NewAuthRequest builds an AuthRequest from an HTTP request.
func NewAuthRequest(r *http.Request) AuthRequest {
	return AuthRequest{Headers: r.Header}
}
