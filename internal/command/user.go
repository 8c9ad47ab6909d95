package command

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stolasapp/mercato/internal/sec"
	"github.com/stolasapp/mercato/internal/site"
	"github.com/stolasapp/mercato/internal/storage"
	"github.com/stolasapp/mercato/internal/storage/db"
)

var userRoles = []string{site.RoleAdministrator, site.RoleSeller, site.RoleCustomer}

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Marketplace account commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userListCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create or update a marketplace account",
		Long: "Creates an account in the shared store for the provided username and\n" +
			"password, or resets the password and role of an existing one. Passwords\n" +
			"may be provided via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			if !slices.Contains(userRoles, role) {
				return fmt.Errorf("unknown role %q, want one of %v", role, userRoles)
			}
			_, logger, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			user, err := store.GetUserByName(cmd.Context(), name)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				user = db.User{Name: name}
			case err != nil:
				return err
			}
			user.Role = role

			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}
			hash, err := sec.HashPassword(passwd)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
			id, err := store.UpsertUser(cmd.Context(), user)
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "saved user",
				slog.String("name", name),
				slog.String("role", role),
				slog.Uint64("id", id),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", site.RoleCustomer, "account role")
	return cmd
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List marketplace accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, _, store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			users, err := store.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			for _, user := range users {
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", user.ID, user.Name, user.Role); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
