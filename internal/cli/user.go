package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/service"
)

type createUserFlags struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Admin     bool
	Superuser bool
}

func newCreateUserCommand() *cobra.Command {
	flags := &createUserFlags{}

	cmd := &cobra.Command{
		Use:     "create-user",
		Short:   "Create a user account",
		Example: `mailroom create-user --email ada@example.com --password s3cretpass --first-name Ada --last-name Lovelace --admin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			input := service.RegisterUserInput{
				Email:       flags.Email,
				Password:    flags.Password,
				FirstName:   flags.FirstName,
				LastName:    flags.LastName,
				Role:        models.RoleUser,
				IsSuperuser: flags.Superuser,
			}
			if flags.Admin || flags.Superuser {
				input.Role = models.RoleAdmin
			}

			user, err := a.users.Register(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (role=%s, superuser=%t)\n", user, user.Role, user.IsSuperuser)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&flags.Password, "password", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVar(&flags.FirstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&flags.LastName, "last-name", "", "Last name (required)")
	cmd.Flags().BoolVar(&flags.Admin, "admin", false, "Give the user the ADMIN role")
	cmd.Flags().BoolVar(&flags.Superuser, "superuser", false, "Mark the user as superuser (implies --admin)")
	for _, name := range []string{"email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
