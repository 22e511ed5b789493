package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
// Empty lists and nil windows do not filter.
type ListTasksInput struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	DueFrom     *time.Time
	DueTo       *time.Time
	Statuses    []string // Filter by status (any of)
	Priorities  []string // Filter by priority (any of)
	AssigneeIDs []int64  // Filter by assignee (any of)
	TagNames    []string // Filter by tag name (any of)
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task // Tasks matching the filter, ordered by ID
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	store domain.Store
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(store domain.Store) *ListTasks {
	return &ListTasks{store: store}
}

// Execute lists tasks matching the given input criteria.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	filter := domain.TaskFilter{
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		DueFrom:     in.DueFrom,
		DueTo:       in.DueTo,
		AssigneeIDs: in.AssigneeIDs,
		TagNames:    in.TagNames,
	}
	for _, raw := range in.Statuses {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, s)
	}
	for _, raw := range in.Priorities {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			return nil, err
		}
		filter.Priorities = append(filter.Priorities, p)
	}

	var tasks []*domain.Task
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		var err error
		tasks, err = tx.ListTasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ListTasksOutput{Tasks: tasks}, nil
}
