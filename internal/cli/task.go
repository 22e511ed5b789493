package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newNewCommand creates the new command.
func newNewCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	var opts struct {
		Title         string
		Description   string
		Status        string
		Priority      string
		Due           string
		From          string
		Tags          []string
		Collaborators []int64
		AssigneeID    int64
		ParentID      int64
		DryRun        bool
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task owned by the acting user.

The task starts as 'todo' with 'medium' priority unless --status or
--priority say otherwise. A create event is written to the audit ledger.

Examples:
  # Create a root task
  taskhub new --title "Ship release" --priority high

  # Create a sub-task under task #1, assigned to user 4
  taskhub new --parent 1 --assignee 4 --title "Write changelog"

  # Create a task with tags and collaborators
  taskhub new --title "Review API" --tag backend --tag review --collaborator 2

  # Create tasks from a YAML file (all or nothing)
  taskhub new --from tasks.yaml

  # Preview tasks from a file without creating
  taskhub new --from tasks.yaml --dry-run

File format for --from:
  - title: Ship release
    priority: high
    tags: [release]
  - title: Write changelog
    parent: 1        # Relative: refers to the first task in this file
  - title: Update docs
    parent: "#123"   # Absolute: refers to existing task #123`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			if opts.From != "" {
				return createTasksFromFile(cmd, c, who, opts.From, opts.DryRun)
			}
			if opts.DryRun {
				return errors.New("--dry-run requires --from")
			}

			// Require --title when not using --from
			if opts.Title == "" {
				return fmt.Errorf("required flag(s) \"title\" not set")
			}

			input := usecase.CreateTaskInput{
				Title:           opts.Title,
				Status:          domain.Status(opts.Status),
				Priority:        domain.Priority(opts.Priority),
				TagNames:        opts.Tags,
				CollaboratorIDs: opts.Collaborators,
				Actor:           who,
			}
			if cmd.Flags().Changed("body") {
				input.Description = &opts.Description
			}
			if opts.Due != "" {
				due, err := parseDate(opts.Due)
				if err != nil {
					return err
				}
				input.DueDate = &due
			}
			if opts.AssigneeID > 0 {
				input.AssigneeID = &opts.AssigneeID
			}
			if opts.ParentID > 0 {
				input.ParentID = &opts.ParentID
			}

			out, err := c.CreateTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", out.Task.ID)
			return nil
		},
	}

	// Flags (--title is conditionally required based on --from)
	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required unless --from is used)")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Initial status (todo, in_progress, done, blocked)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority (low, medium, high)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().Int64Var(&opts.AssigneeID, "assignee", 0, "Assignee user ID")
	cmd.Flags().Int64Var(&opts.ParentID, "parent", 0, "Parent task ID (creates a sub-task)")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "Tags (can specify multiple)")
	cmd.Flags().Int64SliceVar(&opts.Collaborators, "collaborator", nil, "Collaborator user IDs (can specify multiple)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Create tasks from a YAML file ('-' for stdin)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview tasks without creating (requires --from)")

	return cmd
}

// createTasksFromFile creates tasks from a YAML file.
func createTasksFromFile(cmd *cobra.Command, c *app.Container, who domain.Actor, path string, dryRun bool) error {
	content, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	out, err := c.CreateTasksFromFileUseCase().Execute(cmd.Context(), usecase.CreateTasksFromFileInput{
		Content: content,
		Actor:   who,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	verb := "Created"
	if dryRun {
		verb = "Would create"
	}
	for _, task := range out.Tasks {
		parent := ""
		if task.ParentID != nil {
			parent = fmt.Sprintf(" (parent #%d)", *task.ParentID)
		}
		_, _ = fmt.Fprintf(w, "%s task #%d: %s%s\n", verb, task.ID, task.Title, parent)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		CreatedFrom string
		CreatedTo   string
		DueFrom     string
		DueTo       string
		Statuses    []string
		Priorities  []string
		Tags        []string
		AssigneeIDs []int64
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display a list of tasks ordered by ID.

Filters of different kinds combine with AND; repeated values of one kind
combine with OR.

Output columns:
  ID, PARENT, STATUS, PRIORITY, ASSIGNEE, DUE, TAGS, TITLE

Examples:
  # Everything
  taskhub list

  # Open high-priority work for user 4
  taskhub list --status todo --status in_progress --priority high --assignee 4

  # Tasks due this month
  taskhub list --due-from 2026-03-01 --due-to 2026-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTasksInput{
				Statuses:    opts.Statuses,
				Priorities:  opts.Priorities,
				AssigneeIDs: opts.AssigneeIDs,
				TagNames:    opts.Tags,
			}
			for _, f := range []struct {
				dst **time.Time
				raw string
			}{
				{&input.CreatedFrom, opts.CreatedFrom},
				{&input.CreatedTo, opts.CreatedTo},
				{&input.DueFrom, opts.DueFrom},
				{&input.DueTo, opts.DueTo},
			} {
				if f.raw == "" {
					continue
				}
				t, err := parseDate(f.raw)
				if err != nil {
					return err
				}
				*f.dst = &t
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			printTaskList(cmd.OutOrStdout(), out.Tasks, c.Clock)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.Statuses, "status", nil, "Filter by status (can specify multiple)")
	cmd.Flags().StringArrayVar(&opts.Priorities, "priority", nil, "Filter by priority (can specify multiple)")
	cmd.Flags().Int64SliceVar(&opts.AssigneeIDs, "assignee", nil, "Filter by assignee user ID (can specify multiple)")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "Filter by tag (can specify multiple)")
	cmd.Flags().StringVar(&opts.CreatedFrom, "created-from", "", "Created on or after this date")
	cmd.Flags().StringVar(&opts.CreatedTo, "created-to", "", "Created on or before this date")
	cmd.Flags().StringVar(&opts.DueFrom, "due-from", "", "Due on or after this date")
	cmd.Flags().StringVar(&opts.DueTo, "due-to", "", "Due on or before this date")

	return cmd
}

// printTaskList prints tasks in a table.
func printTaskList(w io.Writer, tasks []*domain.Task, clock domain.Clock) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tPARENT\tSTATUS\tPRIORITY\tASSIGNEE\tDUE\tTAGS\tTITLE")

	now := clock.Now()
	for _, task := range tasks {
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.Format(time.DateOnly)
			if task.IsOverdue(now) && task.Status != domain.StatusDone {
				due += "!"
			}
		}

		tags := "-"
		if len(task.Tags) > 0 {
			tags = "[" + strings.Join(task.TagNames(), ",") + "]"
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			idOrDash(task.ParentID),
			statusBadge(task.Status),
			priorityBadge(task.Priority),
			idOrDash(task.AssigneeID),
			due,
			tags,
			task.Title,
		)
	}
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Output    string
		Ancestors bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

Output includes the description, status, priority, people, tags,
direct dependencies and, with --ancestors, the chain of parent tasks.

Examples:
  # Show task by ID
  taskhub show 1

  # Include the parent chain
  taskhub show 7 --ancestors

  # Machine-readable output
  taskhub show 1 -o yaml
  taskhub show 1 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{
				TaskID:       taskID,
				WithAncestor: opts.Ancestors,
			})
			if err != nil {
				return err
			}

			doc := struct {
				Task      *domain.Task   `json:"task" yaml:"task"`
				Ancestors []*domain.Task `json:"ancestors,omitempty" yaml:"ancestors,omitempty"`
				DependsOn []int64        `json:"depends_on" yaml:"depends_on"`
			}{out.Task, out.Ancestors, out.DependsOn}

			switch opts.Output {
			case "yaml":
				return writeYAML(cmd.OutOrStdout(), doc)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "", "text":
				printTaskDetails(cmd.OutOrStdout(), out)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text, yaml or json)", opts.Output)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text, yaml or json")
	cmd.Flags().BoolVar(&opts.Ancestors, "ancestors", false, "Show the chain of parent tasks")

	return cmd
}

// writeYAML encodes v as YAML with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// printTaskDetails prints a task in human-readable form.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	// Header
	_, _ = fmt.Fprintf(w, "# Task %d: %s\n\n", task.ID, task.Title)

	if task.Description != nil && *task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", *task.Description)
	}

	_, _ = fmt.Fprintf(w, "Status: %s\n", statusBadge(task.Status))
	_, _ = fmt.Fprintf(w, "Priority: %s\n", priorityBadge(task.Priority))
	_, _ = fmt.Fprintf(w, "Creator: user %d\n", task.CreatedByID)

	if task.AssigneeID != nil {
		_, _ = fmt.Fprintf(w, "Assignee: user %d\n", *task.AssigneeID)
	} else {
		_, _ = fmt.Fprintln(w, "Assignee: none")
	}

	if task.ParentID != nil {
		_, _ = fmt.Fprintf(w, "Parent: #%d\n", *task.ParentID)
	} else {
		_, _ = fmt.Fprintln(w, "Parent: none")
	}

	if task.DueDate != nil {
		_, _ = fmt.Fprintf(w, "Due: %s\n", task.DueDate.Format(time.DateOnly))
	}

	if len(task.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "Tags: [%s]\n", strings.Join(task.TagNames(), ", "))
	} else {
		_, _ = fmt.Fprintln(w, "Tags: none")
	}

	if len(task.CollaboratorIDs) > 0 {
		_, _ = fmt.Fprintf(w, "Collaborators: %s\n", domain.JoinIDs(task.CollaboratorIDs))
	}

	_, _ = fmt.Fprintf(w, "Created: %s\n", task.CreatedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "Updated: %s\n", task.UpdatedAt.Format(time.RFC3339))

	if len(out.DependsOn) > 0 {
		refs := make([]string, len(out.DependsOn))
		for i, id := range out.DependsOn {
			refs[i] = domain.TaskRef(id)
		}
		_, _ = fmt.Fprintf(w, "Depends on: %s\n", strings.Join(refs, ", "))
	}

	if len(out.Ancestors) > 0 {
		_, _ = fmt.Fprintln(w, "\nAncestors:")
		for _, a := range out.Ancestors {
			_, _ = fmt.Fprintf(w, "  #%d [%s] %s\n", a.ID, a.Status, a.Title)
		}
	}
}

// newEditCommand creates the edit command.
func newEditCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	var opts struct {
		Title         string
		Description   string
		Status        string
		Priority      string
		Due           string
		Tags          []string
		Collaborators []int64
		AssigneeID    int64
		ParentID      int64
		NoCollabs     bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit a task. Only the flags you pass are applied, and only values that
actually differ are recorded: every recorded change becomes one entry in
the audit ledger.

Only admins, managers, the task's creator and its assignee may edit it.
--tag and --collaborator replace the whole set. Clear tags with --tag ""
and collaborators with --no-collaborators.

Examples:
  taskhub edit 1 --status in_progress
  taskhub edit 1 --title "New title" --priority high --as lead@example.com
  taskhub edit 1 --tag backend --tag urgent
  taskhub edit 1 --tag ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			var patch domain.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &opts.Title
			}
			if flags.Changed("body") {
				patch.Description = &opts.Description
			}
			if flags.Changed("status") {
				s := domain.Status(opts.Status)
				patch.Status = &s
			}
			if flags.Changed("priority") {
				p := domain.Priority(opts.Priority)
				patch.Priority = &p
			}
			if flags.Changed("due") {
				due, err := parseDate(opts.Due)
				if err != nil {
					return err
				}
				patch.DueDate = &due
			}
			if flags.Changed("assignee") {
				patch.AssigneeID = &opts.AssigneeID
			}
			if flags.Changed("parent") {
				patch.ParentID = &opts.ParentID
			}
			if flags.Changed("tag") {
				tags := nonEmpty(opts.Tags)
				patch.TagNames = &tags
			}
			if flags.Changed("collaborator") || opts.NoCollabs {
				ids := []int64{}
				if !opts.NoCollabs {
					ids = opts.Collaborators
				}
				patch.CollaboratorIDs = &ids
			}
			if patch.IsEmpty() {
				return domain.ErrNoFieldsToUpdate
			}

			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.UpdateTaskUseCase().Execute(cmd.Context(), usecase.UpdateTaskInput{
				TaskID: taskID,
				Patch:  patch,
				Actor:  who,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Changes) == 0 {
				_, _ = fmt.Fprintf(w, "No changes to task #%d\n", taskID)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Updated task #%d\n", taskID)
			for _, ch := range out.Changes {
				_, _ = fmt.Fprintf(w, "  %s: %s -> %s\n", ch.Field, valueOrNone(ch.Old), valueOrNone(ch.New))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New task title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New task description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status (todo, in_progress, done, blocked)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority (low, medium, high)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().Int64Var(&opts.AssigneeID, "assignee", 0, "New assignee user ID")
	cmd.Flags().Int64Var(&opts.ParentID, "parent", 0, "New parent task ID")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "Replace tags (can specify multiple)")
	cmd.Flags().Int64SliceVar(&opts.Collaborators, "collaborator", nil, "Replace collaborators (can specify multiple)")
	cmd.Flags().BoolVar(&opts.NoCollabs, "no-collaborators", false, "Remove all collaborators")
	cmd.MarkFlagsMutuallyExclusive("collaborator", "no-collaborators")

	return cmd
}

// nonEmpty drops empty strings so that --tag "" clears the set.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func valueOrNone(v *string) string {
	if v == nil {
		return "(none)"
	}
	return *v
}

// newRmCommand creates the rm command.
func newRmCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long: `Delete a task together with its tags, collaborators, dependency edges
and audit history. Sub-tasks are kept and become root tasks.

Only admins, managers and the task's creator may delete it.

Examples:
  # Delete task by ID
  taskhub rm 1

  # Delete task using # prefix
  taskhub rm "#1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{
				TaskID: taskID,
				Actor:  who,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d: %s\n", taskID, out.Title)
			return nil
		},
	}
}

// newBulkCommand creates the bulk command.
func newBulkCommand(c *app.Container, actor *actorFlag) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Update many tasks at once",
		Long: `Update status, priority or assignee of many tasks in one transaction.

Tasks that do not exist or that the acting user may not edit are skipped.
An invalid status or priority on any item aborts the whole batch.

File format for --from:
  - id: 1
    status: done
  - id: 2
    priority: high
    assignee_id: 4

Examples:
  taskhub bulk --from updates.yaml
  cat updates.yaml | taskhub bulk --from -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readInput(cmd, from)
			if err != nil {
				return err
			}
			items, err := decodeBulkItems(content)
			if err != nil {
				return err
			}

			who, err := actor.resolve(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.BulkUpdateUseCase().Execute(cmd.Context(), usecase.BulkUpdateInput{
				Items: items,
				Actor: who,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Updated %d of %d task(s)\n", len(out.Tasks), len(items))
			for _, task := range out.Tasks {
				_, _ = fmt.Fprintf(w, "  #%d [%s] [%s] %s\n", task.ID, task.Status, task.Priority, task.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "YAML file with update items ('-' for stdin)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

// decodeBulkItems decodes a YAML sequence of bulk items.
func decodeBulkItems(content []byte) ([]usecase.BulkItem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var items []usecase.BulkItem
	if err := dec.Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no items", domain.ErrInvalidDraft)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDraft, err)
	}
	return items, nil
}
