package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// CreateTasksFromFileInput contains the parameters for creating tasks from a file.
type CreateTasksFromFileInput struct {
	Content []byte       // File content (YAML drafts)
	Actor   domain.Actor // Creator of every task
	DryRun  bool         // If true, validate everything and roll back
}

// CreateTasksFromFileOutput contains the result of creating tasks from a file.
type CreateTasksFromFileOutput struct {
	Tasks []*domain.Task // Created tasks (or tasks that would be created in dry-run mode)
}

// CreateTasksFromFile is the use case for creating tasks from a file.
type CreateTasksFromFile struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// errDryRun aborts the unit of work after a successful dry run.
var errDryRun = errors.New("dry run")

// NewCreateTasksFromFile creates a new CreateTasksFromFile use case.
func NewCreateTasksFromFile(store domain.Store, clock domain.Clock, logger domain.Logger) *CreateTasksFromFile {
	return &CreateTasksFromFile{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute creates every draft in one unit of work: either all tasks are
// created, each with its create event, or none are.
func (uc *CreateTasksFromFile) Execute(ctx context.Context, in CreateTasksFromFileInput) (*CreateTasksFromFileOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	inputs := make([]CreateTaskInput, len(drafts))
	for i, d := range drafts {
		inputs[i] = CreateTaskInput{
			Title:           d.Title,
			Description:     d.Description,
			Status:          domain.Status(d.Status),
			Priority:        domain.Priority(d.Priority),
			DueDate:         d.DueDate,
			AssigneeID:      d.AssigneeID,
			TagNames:        d.Tags,
			CollaboratorIDs: d.Collaborators,
			Actor:           in.Actor,
		}
		if err := normalizeCreate(&inputs[i]); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}

	op := shared.NewOpID()
	now := uc.clock.Now()
	result := &CreateTasksFromFileOutput{Tasks: make([]*domain.Task, 0, len(drafts))}

	err = uc.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := shared.GetUser(ctx, tx, in.Actor.ID); err != nil {
			return err
		}

		// Map of relative index (1-based) to created task ID
		createdIDs := make(map[int]int64, len(drafts))
		for i, draft := range drafts {
			parentID, err := domain.ResolveParentRef(draft.ParentRef, createdIDs)
			if err != nil {
				return fmt.Errorf("task %d: %w", i+1, err)
			}
			inputs[i].ParentID = parentID

			task, err := insertTask(ctx, tx, inputs[i], now)
			if err != nil {
				return fmt.Errorf("task %d: %w", i+1, err)
			}
			createdIDs[i+1] = task.ID
			result.Tasks = append(result.Tasks, task)
		}

		if in.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	for _, task := range result.Tasks {
		uc.logger.Info(task.ID, "task", fmt.Sprintf("[%s] created from file by user %d: %q", op, in.Actor.ID, task.Title))
	}
	return result, nil
}
