package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/taskhub/internal/domain"
)

// InitStoreInput contains the input parameters for InitStore.
type InitStoreInput struct {
	DataDir    string // Path to the .taskhub directory
	AdminEmail string // Registers a first admin when the store has no users (optional)
}

// InitStoreOutput contains the output from InitStore.
type InitStoreOutput struct {
	Admin              *domain.User // Bootstrapped admin, if any
	DataDir            string       // Path to the data directory
	AlreadyInitialized bool         // True if the schema already existed
}

// InitStore prepares the data directory and the database schema.
type InitStore struct {
	store domain.Store
	clock domain.Clock
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(store domain.Store, clock domain.Clock) *InitStore {
	return &InitStore{store: store, clock: clock}
}

// Execute creates the data and log directories and the schema. Running it
// again is harmless.
func (uc *InitStore) Execute(ctx context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	already := uc.store.IsInitialized(ctx)

	if in.DataDir != "" {
		if err := os.MkdirAll(filepath.Join(in.DataDir, "logs"), 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	if err := uc.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	out := &InitStoreOutput{DataDir: in.DataDir, AlreadyInitialized: already}
	if in.AdminEmail == "" {
		return out, nil
	}

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		users, err := tx.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(users) > 0 {
			return nil
		}
		admin := &domain.User{
			Email:     in.AdminEmail,
			Role:      domain.RoleAdmin,
			Active:    true,
			CreatedAt: uc.clock.Now(),
		}
		if err := tx.InsertUser(ctx, admin); err != nil {
			return fmt.Errorf("save admin: %w", err)
		}
		out.Admin = admin
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
