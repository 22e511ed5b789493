package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// UpdateTaskInput contains the parameters for updating a task.
// Only the non-nil fields of Patch are considered.
type UpdateTaskInput struct {
	Patch  domain.TaskPatch // Partial update
	Actor  domain.Actor     // Who is updating
	TaskID int64            // Task ID to update (required)
}

// UpdateTaskOutput contains the result of updating a task.
type UpdateTaskOutput struct {
	Task    *domain.Task    // The updated task with relations resolved
	Changes []domain.Change // Recorded changes, in ledger order
}

// UpdateTask is the use case for applying a partial update to a task.
type UpdateTask struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewUpdateTask creates a new UpdateTask use case.
func NewUpdateTask(store domain.Store, clock domain.Clock, logger domain.Logger) *UpdateTask {
	return &UpdateTask{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute authorizes the actor, applies the patch, synchronizes relations and
// records one update event per change, all in one unit of work.
func (uc *UpdateTask) Execute(ctx context.Context, in UpdateTaskInput) (*UpdateTaskOutput, error) {
	op := shared.NewOpID()
	now := uc.clock.Now()
	var out UpdateTaskOutput

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		task, err := shared.GetTask(ctx, tx, in.TaskID)
		if err != nil {
			return err
		}
		if !domain.Authorize(in.Actor, task, domain.OpUpdate) {
			return domain.ErrNotAllowed
		}

		changes, err := mutateTask(ctx, tx, task, in.Patch, in.Actor, now)
		if err != nil {
			return err
		}

		out.Changes = changes
		out.Task, err = shared.GetTask(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logChanges(uc.logger, op, in.Actor, out.Task.ID, out.Changes)
	return &out, nil
}

// mutateTask runs the diff engine, the relation synchronizer and the audit
// recorder against a task already loaded and authorized inside tx.
// updated_at only moves when something changed.
func mutateTask(ctx context.Context, tx domain.Tx, task *domain.Task, patch domain.TaskPatch, actor domain.Actor, now time.Time) ([]domain.Change, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, tx, patch); err != nil {
		return nil, err
	}

	changes, err := domain.ApplyFields(task, patch)
	if err != nil {
		return nil, err
	}

	tagChange, err := shared.SyncTags(ctx, tx, task, patch.TagNames)
	if err != nil {
		return nil, err
	}
	if tagChange != nil {
		changes = append(changes, *tagChange)
	}

	collabChange, err := shared.SyncCollaborators(ctx, tx, task, patch.CollaboratorIDs)
	if err != nil {
		return nil, err
	}
	if collabChange != nil {
		changes = append(changes, *collabChange)
	}

	if len(changes) == 0 {
		return nil, nil
	}

	task.UpdatedAt = now
	if err := tx.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	if err := shared.RecordEvents(ctx, tx, domain.NewUpdateEvents(task.ID, actor, changes, now)); err != nil {
		return nil, err
	}
	return changes, nil
}

// checkReferences makes sure a new parent or assignee exists so that a
// dangling reference surfaces as NotFound rather than a storage failure.
func checkReferences(ctx context.Context, tx domain.Tx, patch domain.TaskPatch) error {
	if patch.ParentID != nil {
		parent, err := tx.GetTask(ctx, *patch.ParentID)
		if err != nil {
			return fmt.Errorf("get parent task: %w", err)
		}
		if parent == nil {
			return domain.ErrParentNotFound
		}
	}
	if patch.AssigneeID != nil {
		if _, err := shared.GetUser(ctx, tx, *patch.AssigneeID); err != nil {
			return fmt.Errorf("assignee: %w", err)
		}
	}
	return nil
}

func logChanges(logger domain.Logger, op string, actor domain.Actor, taskID int64, changes []domain.Change) {
	if len(changes) == 0 {
		logger.Debug(taskID, "task", fmt.Sprintf("[%s] update by user %d changed nothing", op, actor.ID))
		return
	}
	for _, c := range changes {
		logger.Info(taskID, "task", fmt.Sprintf("[%s] %s: %s -> %s (user %d)",
			op, c.Field, display(c.Old), display(c.New), actor.ID))
	}
}

func display(v *string) string {
	if v == nil {
		return "<none>"
	}
	return fmt.Sprintf("%q", *v)
}
