package cli

import (
	"fmt"

	"github.com/foodgram/backend/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCreateAdminCommand(a *app) *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account with full access",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := service.NewUserService(a.db).CreateAdmin(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email address, used to log in")
	cmd.Flags().StringVar(&in.Username, "username", "admin", "username")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "Admin", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newDeleteUserCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <email|id>",
		Short: "Delete an account with its recipes, subscriptions, favorites and cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := service.NewUserService(a.db)

			id, err := uuid.Parse(args[0])
			if err != nil {
				user, err := users.FindByEmail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				id = user.ID
			}
			if err := users.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", id)
			return nil
		},
	}
}
