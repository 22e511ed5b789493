package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// newDepCommand creates the dep command.
func newDepCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newDepAddCommand(c, actor))
	cmd.AddCommand(newDepListCommand(c))

	return cmd
}

// newDepAddCommand creates the dep add subcommand.
func newDepAddCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <depends-on-id>",
		Short: "Record that a task depends on another",
		Long: `Record that <id> cannot finish before <depends-on-id>.

Adding an edge that already exists changes nothing. Adding an edge that
closes a cycle is allowed but reported.

Examples:
  taskhub dep add 3 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dependsOnID, err := parseTaskID(args[1])
			if err != nil {
				return err
			}

			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.AddDependencyUseCase().Execute(cmd.Context(), usecase.AddDependencyInput{
				TaskID:      taskID,
				DependsOnID: dependsOnID,
				Actor:       who,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !out.Added {
				_, _ = fmt.Fprintf(w, "Task #%d already depends on #%d\n", taskID, dependsOnID)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Task #%d now depends on #%d\n", taskID, dependsOnID)
			if out.Cycle {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("Warning: this dependency closes a cycle"))
			}
			return nil
		},
	}
}

// newDepListCommand creates the dep list subcommand.
func newDepListCommand(c *app.Container) *cobra.Command {
	var transitive bool

	cmd := &cobra.Command{
		Use:   "list <id>",
		Short: "List the tasks a task depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			out, err := c.ListDependenciesUseCase().Execute(cmd.Context(), usecase.ListDependenciesInput{
				TaskID:     taskID,
				Transitive: transitive,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.DependsOn) == 0 {
				_, _ = fmt.Fprintf(w, "Task #%d has no dependencies\n", taskID)
				return nil
			}
			refs := make([]string, len(out.DependsOn))
			for i, id := range out.DependsOn {
				refs[i] = domain.TaskRef(id)
			}
			_, _ = fmt.Fprintln(w, strings.Join(refs, " "))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "Include indirect dependencies")

	return cmd
}
