// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// CreateTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	Description     *string         // Task description (optional)
	DueDate         *time.Time      // Due date (optional)
	AssigneeID      *int64          // Assignee user ID (optional)
	ParentID        *int64          // Parent task ID (optional, nil = root task)
	Title           string          // Task title (required)
	Status          domain.Status   // Initial status (empty = todo)
	Priority        domain.Priority // Initial priority (empty = medium)
	TagNames        []string        // Tag names, created when unknown
	CollaboratorIDs []int64         // Collaborator user IDs, unknown IDs are dropped
	Actor           domain.Actor    // Creator
}

// CreateTaskOutput contains the result of creating a new task.
type CreateTaskOutput struct {
	Task *domain.Task // The created task with relations resolved
}

// CreateTask is the use case for creating a new task.
type CreateTask struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(store domain.Store, clock domain.Clock, logger domain.Logger) *CreateTask {
	return &CreateTask{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute creates a task and records its create event in one unit of work.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (*CreateTaskOutput, error) {
	if err := normalizeCreate(&in); err != nil {
		return nil, err
	}

	op := shared.NewOpID()
	now := uc.clock.Now()
	var created *domain.Task

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := shared.GetUser(ctx, tx, in.Actor.ID); err != nil {
			return err
		}
		var err error
		created, err = insertTask(ctx, tx, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(created.ID, "task", fmt.Sprintf("[%s] created by user %d: %q", op, in.Actor.ID, created.Title))
	return &CreateTaskOutput{Task: created}, nil
}

// normalizeCreate validates the title, applies defaults, then validates enums.
func normalizeCreate(in *CreateTaskInput) error {
	if in.Title == "" {
		return domain.ErrEmptyTitle
	}
	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
	}
	if !in.Priority.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPriority, in.Priority)
	}
	return nil
}

// insertTask stores a normalized task with its relations and create event,
// and returns it reloaded. The actor must already be known to exist.
func insertTask(ctx context.Context, tx domain.Tx, in CreateTaskInput, now time.Time) (*domain.Task, error) {
	if in.AssigneeID != nil {
		if _, err := shared.GetUser(ctx, tx, *in.AssigneeID); err != nil {
			return nil, fmt.Errorf("assignee: %w", err)
		}
	}
	if in.ParentID != nil {
		parent, err := tx.GetTask(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("get parent task: %w", err)
		}
		if parent == nil {
			return nil, domain.ErrParentNotFound
		}
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedByID: in.Actor.ID,
		AssigneeID:  in.AssigneeID,
		ParentID:    in.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.InsertTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	// Relations are linked but only the create event is recorded
	if len(in.TagNames) > 0 {
		if _, err := shared.SyncTags(ctx, tx, task, &in.TagNames); err != nil {
			return nil, err
		}
	}
	if len(in.CollaboratorIDs) > 0 {
		if _, err := shared.SyncCollaborators(ctx, tx, task, &in.CollaboratorIDs); err != nil {
			return nil, err
		}
	}

	event := domain.NewCreateEvent(task.ID, in.Actor, now)
	if err := shared.RecordEvents(ctx, tx, []domain.TaskEvent{event}); err != nil {
		return nil, err
	}
	return shared.GetTask(ctx, tx, task.ID)
}
