package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// newUserCommand creates the user command.
func newUserCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newUserAddCommand(c))
	cmd.AddCommand(newUserListCommand(c))

	return cmd
}

// newUserAddCommand creates the user add subcommand.
func newUserAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name string
		Role string
	}

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Register a user",
		Long: `Register a user. Emails are unique.

Roles:
  admin    may edit and delete any task
  manager  may edit and delete any task
  member   may edit tasks they created or are assigned to (default)

Examples:
  taskhub user add alice@example.com --name "Alice" --role manager`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.RegisterUserUseCase().Execute(cmd.Context(), usecase.RegisterUserInput{
				Email:    args[0],
				FullName: opts.Name,
				Role:     opts.Role,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered user #%d <%s> (%s)\n", out.User.ID, out.User.Email, out.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Role: admin, manager or member (default member)")

	return cmd
}

// newUserListCommand creates the user list subcommand.
func newUserListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListUsersUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()
			_, _ = fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE")
			for _, u := range out.Users {
				name := u.FullName
				if name == "" {
					name = "-"
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Email, name, u.Role)
			}
			return nil
		},
	}
}
