package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Algorithm is the only signing algorithm the codec produces or accepts.
// It is fixed here and never taken from the token header.
var Algorithm = jwt.SigningMethodHS256

var (
	// ErrInvalidToken wraps every decode failure: bad signature, wrong
	// algorithm, expiry, malformed payload or a missing username claim.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmptySecret is returned when a codec is built without a key.
	ErrEmptySecret = errors.New("token signing secret must not be empty")
)

// TokenCodec encodes and decodes HS256 bearer tokens with a shared secret.
// It holds only read-only state and is safe for concurrent use.
type TokenCodec struct {
	secret        []byte
	issuer        string
	leeway        time.Duration
	requireExpiry bool
	now           func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithIssuer stamps iss on issued tokens and requires it on decode.
func WithIssuer(issuer string) CodecOption {
	return func(c *TokenCodec) {
		c.issuer = issuer
	}
}

// WithLeeway tolerates clock skew when validating time based claims.
func WithLeeway(leeway time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if leeway > 0 {
			c.leeway = leeway
		}
	}
}

// WithExpirationRequired rejects tokens without an exp claim.
func WithExpirationRequired(required bool) CodecOption {
	return func(c *TokenCodec) {
		c.requireExpiry = required
	}
}

// WithClock overrides the time source used for issuing and validation.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec around secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs claims with HS256.
func (c *TokenCodec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(Algorithm, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Issue mints a token for username. A positive ttl sets exp; iat, nbf and a
// random jti are always set.
func (c *TokenCodec) Issue(username string, ttl time.Duration) (string, *Claims, error) {
	if username == "" {
		return "", nil, fmt.Errorf("username is required")
	}

	now := c.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := c.Encode(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// Decode verifies the signature, the pinned algorithm and the time based
// claims of tokenString and returns its claims. Every failure wraps
// ErrInvalidToken.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
	}
	if c.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(c.leeway))
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.requireExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token is not valid", ErrInvalidToken)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}

	return claims, nil
}

// keyFunc hands out the secret only for HMAC tokens, on top of the
// WithValidMethods allow-list.
func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}
