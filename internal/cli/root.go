// Package cli provides the command-line interface for taskhub.
package cli

import (
	"fmt"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup  = "setup"
	groupTask   = "task"
	groupReport = "report"
)

// NewRootCommand creates the root command for taskhub.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var actorRef string

	root := &cobra.Command{
		Use:   "taskhub",
		Short: "Collaborative task tracker with an audit trail",
		Long: `taskhub tracks tasks shared between users.

Every mutation runs as a user (--as <id|email>, or [actor] default in
config.toml), is checked against that user's role, and is recorded in an
append-only audit ledger that 'taskhub log' replays.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.Config.App == nil {
				return nil
			}
			for _, w := range c.Config.App.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&actorRef, "as", "", "Act as this user (ID or email)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupReport, Title: "Reports and Serving:"},
	)

	actor := &actorFlag{ref: &actorRef}

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	userCmd := newUserCommand(c)
	userCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(c, actor)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(c, actor)
	editCmd.GroupID = groupTask

	rmCmd := newRmCommand(c, actor)
	rmCmd.GroupID = groupTask

	bulkCmd := newBulkCommand(c, actor)
	bulkCmd.GroupID = groupTask

	depCmd := newDepCommand(c, actor)
	depCmd.GroupID = groupTask

	logCmd := newLogCommand(c)
	logCmd.GroupID = groupTask

	// Reports
	statsCmd := newStatsCommand(c)
	statsCmd.GroupID = groupReport

	timelineCmd := newTimelineCommand(c, actor)
	timelineCmd.GroupID = groupReport

	serveCmd := newServeCommand(c)
	serveCmd.GroupID = groupReport

	// Add subcommands
	root.AddCommand(
		initCmd,
		configCmd,
		userCmd,
		newCmd,
		listCmd,
		showCmd,
		editCmd,
		rmCmd,
		bulkCmd,
		depCmd,
		logCmd,
		statsCmd,
		timelineCmd,
		serveCmd,
	)

	return root
}
