package cli

import (
	"fmt"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var admin string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize taskhub in the current directory",
		Long: `Initialize taskhub in the current directory.

This command creates the .taskhub/ directory with:
- taskhub.db: the SQLite task store
- logs/: directory for log files

Running init again is safe: the schema is created only if missing.
With --admin, the first admin user is registered when the store has no users.

Examples:
  taskhub init --admin lead@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitStoreUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitStoreInput{
				DataDir:    c.Config.DataDir,
				AdminEmail: admin,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "taskhub already initialized in %s\n", out.DataDir)
			} else {
				_, _ = fmt.Fprintf(w, "Initialized taskhub in %s\n", out.DataDir)
			}
			if out.Admin != nil {
				_, _ = fmt.Fprintf(w, "Registered admin #%d <%s>\n", out.Admin.ID, out.Admin.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "Register this email as the first admin")

	return cmd
}
