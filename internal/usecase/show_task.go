package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID       int64 // Task ID (required)
	WithAncestor bool  // Resolve the parent chain
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task      *domain.Task   // The task details
	Ancestors []*domain.Task // Parent chain, nearest first (only when requested)
	DependsOn []int64        // Direct dependencies
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	store domain.Store
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(store domain.Store) *ShowTask {
	return &ShowTask{store: store}
}

// Execute retrieves and returns the task details.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	var out ShowTaskOutput
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		task, err := shared.GetTask(ctx, tx, in.TaskID)
		if err != nil {
			return err
		}
		out.Task = task

		if out.DependsOn, err = tx.ListDependencies(ctx, task.ID); err != nil {
			return fmt.Errorf("list dependencies: %w", err)
		}

		if !in.WithAncestor || task.IsRoot() {
			return nil
		}
		index, err := tx.ParentIndex(ctx)
		if err != nil {
			return err
		}
		for _, id := range domain.Ancestors(index, task.ID) {
			ancestor, err := shared.GetTask(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("ancestor %s: %w", domain.TaskRef(id), err)
			}
			out.Ancestors = append(out.Ancestors, ancestor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
