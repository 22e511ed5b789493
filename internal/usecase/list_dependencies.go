package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/runoshun/taskhub/internal/domain"
)

// ListDependenciesInput contains the parameters for listing dependencies.
type ListDependenciesInput struct {
	TaskID     int64 // Task whose dependencies are listed
	Transitive bool  // Follow edges through intermediate tasks
}

// ListDependenciesOutput contains the dependency IDs, ascending.
type ListDependenciesOutput struct {
	DependsOn []int64
}

// ListDependencies is the use case for listing what a task depends on.
type ListDependencies struct {
	store domain.Store
}

// NewListDependencies creates a new ListDependencies use case.
func NewListDependencies(store domain.Store) *ListDependencies {
	return &ListDependencies{store: store}
}

// Execute returns the IDs the task depends on. An unknown task simply has
// no dependencies.
func (uc *ListDependencies) Execute(ctx context.Context, in ListDependenciesInput) (*ListDependenciesOutput, error) {
	var ids []int64
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		if !in.Transitive {
			var err error
			ids, err = tx.ListDependencies(ctx, in.TaskID)
			if err != nil {
				return fmt.Errorf("list dependencies: %w", err)
			}
			return nil
		}

		all, err := tx.AllDependencies(ctx)
		if err != nil {
			return fmt.Errorf("load dependencies: %w", err)
		}
		ids = domain.NewDependencyGraph(all).Reachable(in.TaskID)
		slices.Sort(ids)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ListDependenciesOutput{DependsOn: ids}, nil
}
