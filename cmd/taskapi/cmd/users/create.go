package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

const bcryptCost = 12

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Creates a user. A password is optional: users without one can only
authenticate with tokens minted by 'taskapi token issue'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		if emailFlag != "" {
			if _, err := mail.ParseAddress(emailFlag); err != nil {
				return fmt.Errorf("invalid email format: %w", err)
			}
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password == "" {
				return fmt.Errorf("empty password read from stdin")
			}
		}

		ctx := context.Background()
		userRepo, db, err := openUserRepository(ctx)
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		user := &models.User{
			Username: usernameFlag,
			Email:    emailFlag,
		}
		if password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			hash := string(hashed)
			user.PasswordHash = &hash
		}

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return fmt.Errorf("user %q already exists", usernameFlag)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "User created successfully!")
		fmt.Fprintln(out, "----------------------------------------")
		fmt.Fprintf(out, "User ID: %s\n", user.ID)
		fmt.Fprintf(out, "Username: %s\n", user.Username)
		if user.Email != "" {
			fmt.Fprintf(out, "Email: %s\n", user.Email)
		}
		fmt.Fprintf(out, "Password login: %t\n", user.PasswordHash != nil)
		fmt.Fprintln(out, "----------------------------------------")
		return nil
	},
}
