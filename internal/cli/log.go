package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// newLogCommand creates the log command.
func newLogCommand(c *app.Container) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "log <id>",
		Aliases: []string{"history"},
		Short:   "Show the audit history of a task",
		Long: `Show every audit ledger entry of a task, oldest first.

Examples:
  taskhub log 1
  taskhub log 1 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			out, err := c.TaskHistoryUseCase().Execute(cmd.Context(), usecase.TaskHistoryInput{TaskID: taskID})
			if err != nil {
				return err
			}

			if output == "yaml" {
				return writeYAML(cmd.OutOrStdout(), out.Events)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# Task %d: %s\n\n", out.Task.ID, out.Task.Title)
			printEvents(cmd.OutOrStdout(), out.Events, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")

	return cmd
}

// printEvents prints ledger entries in a table.
func printEvents(w io.Writer, events []domain.TaskEvent, withTask bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	if withTask {
		_, _ = fmt.Fprint(tw, "TASK\t")
	}
	_, _ = fmt.Fprintln(tw, "TIME\tUSER\tEVENT\tFIELD\tOLD\tNEW")

	for _, e := range events {
		user := "system"
		if e.UserID != nil {
			user = fmt.Sprintf("%d", *e.UserID)
		}
		field := "-"
		if e.Field != nil {
			field = *e.Field
		}
		if withTask {
			_, _ = fmt.Fprintf(tw, "%s\t", domain.TaskRef(e.TaskID))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.DateTime),
			user,
			e.Type,
			field,
			valueOrNone(e.OldValue),
			valueOrNone(e.NewValue),
		)
	}
}
