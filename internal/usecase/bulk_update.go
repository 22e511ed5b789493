package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// BulkItem is one entry of a bulk update. Only status, priority and
// assignee can be changed in bulk.
type BulkItem struct {
	Status     *string `yaml:"status,omitempty" json:"status,omitempty"`
	Priority   *string `yaml:"priority,omitempty" json:"priority,omitempty"`
	AssigneeID *int64  `yaml:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	ID         int64   `yaml:"id" json:"id"`
}

// Patch converts the item into a task patch.
func (b BulkItem) Patch() domain.TaskPatch {
	var p domain.TaskPatch
	if b.Status != nil {
		s := domain.Status(*b.Status)
		p.Status = &s
	}
	if b.Priority != nil {
		pr := domain.Priority(*b.Priority)
		p.Priority = &pr
	}
	p.AssigneeID = b.AssigneeID
	return p
}

// BulkUpdateInput contains the parameters for a bulk update.
type BulkUpdateInput struct {
	Items []BulkItem
	Actor domain.Actor
}

// BulkUpdateOutput contains the tasks that were updated, in item order.
// Skipped items do not appear.
type BulkUpdateOutput struct {
	Tasks []*domain.Task
}

// BulkUpdate is the use case for updating many tasks in one unit of work.
type BulkUpdate struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewBulkUpdate creates a new BulkUpdate use case.
func NewBulkUpdate(store domain.Store, clock domain.Clock, logger domain.Logger) *BulkUpdate {
	return &BulkUpdate{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

type bulkResult struct {
	changes []domain.Change
	taskID  int64
}

// Execute applies every item inside a single transaction. Items whose task
// is missing or that the actor may not update are skipped without error.
// Any other failure, including an invalid enum value, aborts the whole batch.
func (uc *BulkUpdate) Execute(ctx context.Context, in BulkUpdateInput) (*BulkUpdateOutput, error) {
	// Validate every item before opening the unit of work
	for _, item := range in.Items {
		if err := item.Patch().Validate(); err != nil {
			return nil, fmt.Errorf("item %s: %w", domain.TaskRef(item.ID), err)
		}
	}

	op := shared.NewOpID()
	now := uc.clock.Now()
	var (
		results []bulkResult
		skipped []int64
		tasks   []*domain.Task
	)

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		results, skipped, tasks = nil, nil, nil
		for _, item := range in.Items {
			task, err := tx.GetTask(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			if task == nil || !domain.Authorize(in.Actor, task, domain.OpUpdate) {
				skipped = append(skipped, item.ID)
				continue
			}

			changes, err := mutateTask(ctx, tx, task, item.Patch(), in.Actor, now)
			if err != nil {
				return fmt.Errorf("item %s: %w", domain.TaskRef(item.ID), err)
			}
			results = append(results, bulkResult{taskID: task.ID, changes: changes})
		}

		// Reload once every item has been applied so repeated IDs show the final state
		for _, r := range results {
			task, err := shared.GetTask(ctx, tx, r.taskID)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error(0, "bulk", fmt.Sprintf("[%s] batch of %d items aborted: %v", op, len(in.Items), err))
		return nil, err
	}

	for _, id := range skipped {
		uc.logger.Debug(id, "bulk", fmt.Sprintf("[%s] skipped: missing or not allowed for user %d", op, in.Actor.ID))
	}
	for _, r := range results {
		logChanges(uc.logger, op, in.Actor, r.taskID, r.changes)
	}
	uc.logger.Info(0, "bulk", fmt.Sprintf("[%s] updated %d of %d items", op, len(results), len(in.Items)))

	return &BulkUpdateOutput{Tasks: tasks}, nil
}
