// Package shared holds the pieces every task mutation goes through inside
// its unit of work: task lookup, relation synchronization, and audit recording.
package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := tx.GetTask(ctx, taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, repo domain.TaskRepository, taskID int64) (*domain.Task, error) {
	task, err := repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetUser retrieves a user by ID and returns domain.ErrUserNotFound if not found.
func GetUser(ctx context.Context, repo domain.UserRepository, userID int64) (*domain.User, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
