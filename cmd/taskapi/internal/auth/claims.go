package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the decoded payload of a bearer token.
//
// Username identifies the account the token was issued for; the registered
// claims carry expiry, issuer and token ID.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenID returns the jti claim, or "" when the token has none.
func (c *Claims) TokenID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
