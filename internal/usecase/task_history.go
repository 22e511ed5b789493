package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// TaskHistoryInput contains the parameters for reading a task's ledger.
type TaskHistoryInput struct {
	TaskID int64
}

// TaskHistoryOutput contains the task and its events in ledger order.
type TaskHistoryOutput struct {
	Task   *domain.Task
	Events []domain.TaskEvent
}

// TaskHistory is the use case for reading the audit ledger of one task.
type TaskHistory struct {
	store domain.Store
}

// NewTaskHistory creates a new TaskHistory use case.
func NewTaskHistory(store domain.Store) *TaskHistory {
	return &TaskHistory{store: store}
}

// Execute returns the events of the task ordered by created_at, then ID.
func (uc *TaskHistory) Execute(ctx context.Context, in TaskHistoryInput) (*TaskHistoryOutput, error) {
	var out TaskHistoryOutput
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		task, err := shared.GetTask(ctx, tx, in.TaskID)
		if err != nil {
			return err
		}
		out.Task = task
		if out.Events, err = tx.ListEvents(ctx, task.ID); err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
