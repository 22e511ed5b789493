package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	Actor  domain.Actor // Who is deleting
	TaskID int64        // Task ID to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Title string // Title of the deleted task
}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	store  domain.Store
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(store domain.Store, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		store:  store,
		logger: logger,
	}
}

// Execute deletes a task with the given ID. Tags, collaborators, dependency
// edges in both directions and the task's events go with it; child tasks
// become root tasks. Deletion itself is not audited.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	op := shared.NewOpID()
	var title string

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		task, err := shared.GetTask(ctx, tx, in.TaskID)
		if err != nil {
			return err
		}
		if !domain.Authorize(in.Actor, task, domain.OpDelete) {
			return domain.ErrNotAllowed
		}
		title = task.Title

		if err := tx.DeleteTask(ctx, task.ID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(in.TaskID, "task", fmt.Sprintf("[%s] deleted by user %d: %q", op, in.Actor.ID, title))
	return &DeleteTaskOutput{Title: title}, nil
}
