package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seuros/jogo/internal/auth"
	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/store"
)

// readPassword reads a password from stdin without echoing. Replaced in tests.
var readPassword = func(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

// confirmInput is where confirmation prompts are read from.
var confirmInput io.Reader = os.Stdin

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  `Manage Jogo users via CLI. Create, list, and delete users.`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a new user",
	Long: `Create a new user with email and password.

The password is hashed with bcrypt before it is stored.

Example:
  jogo user create ada@example.com --first-name Ada --last-name Lovelace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirmPassword, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirmPassword {
			return errors.New("passwords do not match")
		}

		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st store.Store) error {
			return runUserCreate(ctx, cmd, st, auth.RegisterInput{
				Email:     args[0],
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			})
		})
	},
}

func runUserCreate(ctx context.Context, cmd *cobra.Command, users store.Users, in auth.RegisterInput) error {
	user, err := auth.NewService(users, nil).CreateUser(ctx, in)
	if err != nil {
		return err
	}

	cmd.Printf("\n✓ User created successfully\n")
	cmd.Printf("  ID:      %s\n", user.ID)
	cmd.Printf("  Email:   %s\n", user.Email)
	if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
		cmd.Printf("  Name:    %s\n", name)
	}
	cmd.Printf("  Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long:  `List all users in the system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st store.Store) error {
			return runUserList(ctx, cmd, st)
		})
	},
}

func runUserList(ctx context.Context, cmd *cobra.Command, users store.Users) error {
	list, err := users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(list) == 0 {
		cmd.Println("No users found")
		return nil
	}

	cmd.Printf("\nTotal users: %d\n\n", len(list))
	cmd.Printf("%-36s  %-30s  %-20s  %s\n", "ID", "Email", "Name", "Created")
	cmd.Println(strings.Repeat("-", 110))
	for _, user := range list {
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		if name == "" {
			name = "-"
		}
		cmd.Printf("%-36s  %-30s  %-20s  %s\n", user.ID, user.Email, name, user.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete a user",
	Long: `Delete a user by email.

Funnels and analytics owned by the user are left in place.

Example:
  jogo user delete ada@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st store.Store) error {
			return runUserDelete(ctx, cmd, st, args[0], force)
		})
	},
}

func runUserDelete(ctx context.Context, cmd *cobra.Command, users store.Users, email string, force bool) error {
	user, err := users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("user '%s' not found", email)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !force {
		cmd.Printf("Are you sure you want to delete user '%s'? (yes/no): ", user.Email)
		response, _ := bufio.NewReader(confirmInput).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			cmd.Println("Deletion cancelled")
			return nil
		}
	}

	if err := users.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	cmd.Printf("✓ User '%s' deleted successfully\n", user.Email)
	return nil
}

func init() {
	userCreateCmd.Flags().String("first-name", "", "User's first name")
	userCreateCmd.Flags().String("last-name", "", "User's last name")
	userDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)

	RootCmd.AddCommand(userCmd)
}
