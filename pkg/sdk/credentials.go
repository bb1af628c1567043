package sdk

import "time"

// Credentials holds a bearer token obtained from Login.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// IsExpired reports whether the token has passed its expiry. Tokens without
// an expiry never expire client-side.
func (c *Credentials) IsExpired() bool {
	if c == nil || c.AccessToken == "" {
		return true
	}
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}
