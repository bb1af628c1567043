package iam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/auth"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

// AuthorizationHeader is the header the JWT authenticator reads.
const AuthorizationHeader = "Authorization"

// bearerPattern matches "Bearer <token>": case-sensitive scheme, whitespace,
// then a token without whitespace.
var bearerPattern = regexp.MustCompile(`^Bearer\s+(\S+)\s*$`)

// TokenDecoder validates a bearer token and returns its claims. The
// accepted algorithm is fixed by the implementation.
type TokenDecoder interface {
	Decode(token string) (*auth.Claims, error)
}

// UserLookup resolves the username claim to a user row. Implementations
// return an error wrapping repository.ErrNotFound, or a nil user, when no
// user matches.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// JWTAuthenticator authenticates requests using HS256 JWT bearer tokens.
//
// No password is checked: trust rests entirely on the token signature.
// The authenticator is stateless and safe for concurrent use.
type JWTAuthenticator struct {
	codec  TokenDecoder
	users  UserLookup
	logger *zap.Logger
}

var _ Authenticator = (*JWTAuthenticator)(nil)

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(codec TokenDecoder, users UserLookup, logger *zap.Logger) (*JWTAuthenticator, error) {
	if codec == nil {
		return nil, fmt.Errorf("token decoder is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTAuthenticator{
		codec:  codec,
		users:  users,
		logger: logger.Named("jwt_authenticator"),
	}, nil
}

// Supports returns true iff an Authorization header is present.
func (a *JWTAuthenticator) Supports(req AuthRequest) bool {
	return len(req.Headers.Values(AuthorizationHeader)) > 0
}

// Authenticate extracts and validates the bearer token and resolves its user.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req AuthRequest) (*Principal, error) {
	header := req.Headers.Get(AuthorizationHeader)
	if header == "" {
		return nil, NewAuthFailure(MissingHeader, nil)
	}

	token, ok := ExtractBearerToken(header)
	if !ok {
		return nil, NewAuthFailure(MalformedHeader, nil)
	}

	claims, err := a.codec.Decode(token)
	if err != nil {
		// The precise cryptographic reason stays in the logs.
		a.logger.Debug("bearer token rejected", zap.Error(err))
		return nil, NewAuthFailure(InvalidOrExpiredToken, err)
	}

	user, err := a.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewAuthFailure(UserNotFound, err)
		}
		return nil, fmt.Errorf("resolve user %q: %w", claims.Username, err)
	}
	if user == nil {
		return nil, NewAuthFailure(UserNotFound, nil)
	}

	principal := &Principal{
		User:    *user,
		TokenID: claims.TokenID(),
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// OnAuthenticationFailure writes 401 with a JSON {"message": reason} body.
func (a *JWTAuthenticator) OnAuthenticationFailure(w http.ResponseWriter, _ *http.Request, failure *AuthFailure) {
	WriteFailure(w, failure)
}

// OnAuthenticationSuccess lets the request continue.
func (a *JWTAuthenticator) OnAuthenticationSuccess(*http.Request, *Principal, string) http.Handler {
	return nil
}

// ExtractBearerToken returns the token of a "Bearer <token>" header value.
func ExtractBearerToken(header string) (string, bool) {
	matches := bearerPattern.FindStringSubmatch(header)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// WriteFailure renders an authentication failure as a 401 JSON response.
func WriteFailure(w http.ResponseWriter, failure *AuthFailure) {
	if failure == nil {
		failure = NewAuthFailure(MissingHeader, nil)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": failure.Message()})
}
