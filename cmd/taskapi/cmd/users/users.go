package users

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd/cmdutil"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/config"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage API users",
	Long:  `Commands for managing the users that bearer tokens and logins resolve to.`,
}

func init() {
	createCmd.Flags().StringVar(&usernameFlag, "username", "", "Username of the user (required)")
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	disableCmd.Flags().StringVar(&usernameFlag, "username", "", "Username of the user to disable (required)")

	UsersCmd.AddCommand(createCmd, listCmd, disableCmd)
}

// openUserRepository loads configuration and connects to the database.
func openUserRepository(ctx context.Context) (*repository.BunUserRepository, *bun.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := cmdutil.OpenDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewBunUserRepository(db), db, nil
}
