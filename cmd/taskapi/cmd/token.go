package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd/cmdutil"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

var (
	tokenUsername   string
	tokenTTL        time.Duration
	tokenSkipLookup bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Bearer token utilities",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Mint a bearer token for a user",
	Long: `Signs an HS256 token with the configured secret. The user must exist and be
enabled unless --skip-lookup is given. A zero --ttl falls back to jwt.ttl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUsername == "" {
			return fmt.Errorf("--username flag is required")
		}

		codec, err := cmdutil.NewTokenCodec(cfg.JWT)
		if err != nil {
			return err
		}

		if !tokenSkipLookup {
			ctx := context.Background()
			db, err := cmdutil.OpenDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer bunx.Close(db)

			if _, err := repository.NewBunUserRepository(db).FindByUsername(ctx, tokenUsername); err != nil {
				return fmt.Errorf("failed to resolve user: %w", err)
			}
		}

		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.JWT.TTL
		}

		token, claims, err := codec.Issue(tokenUsername, ttl)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		if claims.ExpiresAt != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Token %s expires at %s\n", claims.TokenID(), claims.ExpiresAt.Time.Format(time.RFC3339))
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenUsername, "username", "", "Username to put in the token")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default jwt.ttl)")
	tokenIssueCmd.Flags().BoolVar(&tokenSkipLookup, "skip-lookup", false, "Do not check that the user exists")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}
