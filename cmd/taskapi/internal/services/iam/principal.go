package iam

import (
	"context"
	"time"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
)

// Principal is the authenticated identity attached to a request.
//
// It is built once per request after the token has been validated and the
// user found, and is not modified afterwards.
type Principal struct {
	// User is a copy of the resolved users row.
	User models.User

	// TokenID is the jti of the bearer token, when present.
	TokenID string

	// ExpiresAt is the token expiry, zero when the token has no exp claim.
	ExpiresAt time.Time
}

// Username returns the authenticated account name.
func (p *Principal) Username() string {
	if p == nil {
		return ""
	}
	return p.User.Username
}

// UserID returns the users.id of the authenticated account.
func (p *Principal) UserID() string {
	if p == nil {
		return ""
	}
	return p.User.ID
}

type principalContextKey struct{}

// WithPrincipal stores the principal on the context for downstream handlers.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*Principal)
	return principal, ok && principal != nil
}
