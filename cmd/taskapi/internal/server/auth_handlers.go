package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/auth"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/iam"
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string, ttl time.Duration) (string, *auth.Claims, error)
}

// LoginRequest is the JSON body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// WhoAmIResponse describes the authenticated principal.
type WhoAmIResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	TokenID   string     `json:"token_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HandleLogin exchanges a username and password for a bearer token.
// Unknown users, disabled users and wrong passwords all answer the same 401.
func HandleLogin(users repository.UserFinder, issuer TokenIssuer, ttl time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Missing username or password")
			return
		}

		user, err := users.FindByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			logger.Error("login user lookup failed", zap.String("username", req.Username), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if user.PasswordHash == nil || *user.PasswordHash == "" {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, claims, err := issuer.Issue(user.Username, ttl)
		if err != nil {
			logger.Error("issue token failed", zap.String("username", user.Username), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		resp := LoginResponse{AccessToken: token, TokenType: "Bearer"}
		if claims.ExpiresAt != nil {
			resp.ExpiresIn = int64(time.Until(claims.ExpiresAt.Time).Round(time.Second) / time.Second)
		}
		logger.Info("user logged in", zap.String("username", user.Username), zap.String("jti", claims.TokenID()))
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleWhoAmI returns the principal attached by the authentication middleware.
func HandleWhoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := iam.PrincipalFromContext(r.Context())
		if !ok {
			iam.WriteFailure(w, iam.NewAuthFailure(iam.MissingHeader, nil))
			return
		}

		resp := WhoAmIResponse{
			ID:       principal.UserID(),
			Username: principal.Username(),
			Email:    principal.User.Email,
			TokenID:  principal.TokenID,
		}
		if !principal.ExpiresAt.IsZero() {
			exp := principal.ExpiresAt.UTC()
			resp.ExpiresAt = &exp
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
