package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-with-enough-entropy")

func newTestCodec(t *testing.T, opts ...CodecOption) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RejectsEmptySecret(t *testing.T) {
	_, err := NewTokenCodec(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewTokenCodec([]byte{})
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Encode(Claims{Username: "alice"})
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenCodec_Issue(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, WithClock(func() time.Time { return now }), WithIssuer("taskapi"))

	token, issued, err := codec.Issue("alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID())
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt.Time)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "taskapi", claims.Issuer)
	assert.Equal(t, issued.TokenID(), claims.TokenID())

	_, _, err = codec.Issue("", time.Hour)
	assert.Error(t, err)
}

func TestTokenCodec_DecodeFailures(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	codec := newTestCodec(t, WithClock(clock))

	otherCodec, err := NewTokenCodec([]byte("a-different-secret"), WithClock(clock))
	require.NoError(t, err)
	wrongSecret, err := otherCodec.Encode(Claims{Username: "alice"})
	require.NoError(t, err)

	expired, err := codec.Encode(Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	})
	require.NoError(t, err)

	notYetValid, err := codec.Encode(Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	noUsername, err := codec.Encode(Claims{})
	require.NoError(t, err)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{Username: "alice"}).SignedString(testSecret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{Username: "alice"}).SignedString(rsaKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: wrongSecret},
		{name: "expired", token: expired},
		{name: "not yet valid", token: notYetValid},
		{name: "missing username", token: noUsername},
		{name: "HS384 with the same secret", token: hs384},
		{name: "alg none", token: unsigned},
		{name: "RS256", token: rs256},
		{name: "malformed", token: "abc.def.ghi"},
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenCodec_Leeway(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	token, err := newTestCodec(t).Encode(Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
	})
	require.NoError(t, err)

	_, err = newTestCodec(t, WithClock(clock)).Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := newTestCodec(t, WithClock(clock), WithLeeway(30*time.Second)).Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenCodec_ExpirationRequired(t *testing.T) {
	token, err := newTestCodec(t).Encode(Claims{Username: "alice"})
	require.NoError(t, err)

	_, err = newTestCodec(t).Decode(token)
	assert.NoError(t, err)

	_, err = newTestCodec(t, WithExpirationRequired(true)).Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_IssuerMismatch(t *testing.T) {
	token, _, err := newTestCodec(t, WithIssuer("someone-else")).Issue("alice", time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t, WithIssuer("taskapi")).Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
