package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

// ListUsersOutput contains every user ordered by ID.
type ListUsersOutput struct {
	Users []*domain.User
}

// ListUsers is the use case for listing users.
type ListUsers struct {
	store domain.Store
}

// NewListUsers creates a new ListUsers use case.
func NewListUsers(store domain.Store) *ListUsers {
	return &ListUsers{store: store}
}

// Execute lists all users.
func (uc *ListUsers) Execute(ctx context.Context) (*ListUsersOutput, error) {
	var users []*domain.User
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		var err error
		if users, err = tx.ListUsers(ctx); err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ListUsersOutput{Users: users}, nil
}
