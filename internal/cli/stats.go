package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// newStatsCommand creates the stats command.
func newStatsCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how tasks are distributed across assignees",
		Long: `Show, for every user with assigned tasks, how many tasks they hold
and how many of those are past their due date.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.TaskDistributionUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()
			_, _ = fmt.Fprintln(tw, "ASSIGNEE\tTASKS\tOVERDUE")
			for _, l := range out.Loads {
				_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\n", l.UserID, l.TotalTasks, l.OverdueTasks)
			}
			return nil
		},
	}
}

// newTimelineCommand creates the timeline command.
func newTimelineCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show recent activity on your tasks",
		Long: `Show audit events from the last --days days on tasks the acting user
created or is assigned to, newest first.

Examples:
  taskhub timeline --days 14 --as 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.TimelineUseCase().Execute(cmd.Context(), usecase.TimelineInput{
				Actor: who,
				Days:  days,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Activity since %s\n\n", out.Since.Format(time.DateTime))
			printEvents(w, out.Events, true)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", usecase.DefaultTimelineDays, "Window size in days (1-90)")

	return cmd
}
