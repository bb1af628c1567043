package users

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		userRepo, db, err := openUserRepository(ctx)
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		users, err := userRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tCREATED\tSTATUS")
		for _, u := range users {
			status := "active"
			if u.IsDisabled() {
				status = "disabled"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format(time.RFC3339), status)
		}
		return tw.Flush()
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable a user",
	Long: `Disables a user. Tokens naming the user stop authenticating once the
user lookup cache entry expires (user_cache.ttl).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		ctx := context.Background()
		userRepo, db, err := openUserRepository(ctx)
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		user, err := userRepo.GetByUsername(ctx, usernameFlag)
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}
		if err := userRepo.Disable(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to disable user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User %s disabled\n", user.Username)
		return nil
	},
}
