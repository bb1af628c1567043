// Package cmdutil holds construction helpers shared by CLI commands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/auth"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/config"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
)

// NewLogger builds the process logger: development encoding at debug level
// when debug is set, JSON production logging otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// OpenDB connects to the configured database.
func OpenDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	db, err := bunx.NewDB(ctx, cfg.DatabaseURL, bunx.Options{MaxOpenConns: cfg.MaxDBConnections})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewTokenCodec validates the token settings and builds the codec.
func NewTokenCodec(cfg config.JWTConfig) (*auth.TokenCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return auth.NewTokenCodec([]byte(cfg.Secret),
		auth.WithIssuer(cfg.Issuer),
		auth.WithLeeway(cfg.Leeway),
		auth.WithExpirationRequired(cfg.RequireExpiry),
	)
}
