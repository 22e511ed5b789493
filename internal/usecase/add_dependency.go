package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// AddDependencyInput contains the parameters for adding a dependency edge.
type AddDependencyInput struct {
	Actor       domain.Actor // Who is adding the edge
	TaskID      int64        // The dependent task
	DependsOnID int64        // The task it depends on
}

// AddDependencyOutput contains the result of adding a dependency edge.
type AddDependencyOutput struct {
	Added bool // False when the edge already existed
	Cycle bool // True when the new edge closes a dependency cycle
}

// AddDependency is the use case for making one task depend on another.
type AddDependency struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewAddDependency creates a new AddDependency use case.
func NewAddDependency(store domain.Store, clock domain.Clock, logger domain.Logger) *AddDependency {
	return &AddDependency{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute inserts the edge and its add_dependency event in one unit of
// work. An existing edge is a no-op. Longer cycles are reported, not rejected.
func (uc *AddDependency) Execute(ctx context.Context, in AddDependencyInput) (*AddDependencyOutput, error) {
	if in.TaskID == in.DependsOnID {
		return nil, domain.ErrSelfDependency
	}

	op := shared.NewOpID()
	now := uc.clock.Now()
	dep := domain.Dependency{TaskID: in.TaskID, DependsOnID: in.DependsOnID}
	var out AddDependencyOutput

	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		if _, err := shared.GetTask(ctx, tx, in.TaskID); err != nil {
			return err
		}
		if _, err := shared.GetTask(ctx, tx, in.DependsOnID); err != nil {
			return fmt.Errorf("depends-on %w", err)
		}

		exists, err := tx.DependencyExists(ctx, dep)
		if err != nil {
			return fmt.Errorf("check dependency: %w", err)
		}
		if exists {
			return nil
		}

		all, err := tx.AllDependencies(ctx)
		if err != nil {
			return fmt.Errorf("load dependencies: %w", err)
		}
		out.Cycle = domain.NewDependencyGraph(all).ClosesCycle(in.TaskID, in.DependsOnID)

		if err := tx.InsertDependency(ctx, dep); err != nil {
			return fmt.Errorf("save dependency: %w", err)
		}
		event := domain.NewDependencyEvent(in.TaskID, in.DependsOnID, in.Actor, now)
		if err := shared.RecordEvents(ctx, tx, []domain.TaskEvent{event}); err != nil {
			return err
		}
		out.Added = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case !out.Added:
		uc.logger.Debug(in.TaskID, "dependency", fmt.Sprintf("[%s] already depends on %s", op, domain.TaskRef(in.DependsOnID)))
	case out.Cycle:
		uc.logger.Warn(in.TaskID, "dependency", fmt.Sprintf("[%s] now depends on %s, closing a cycle", op, domain.TaskRef(in.DependsOnID)))
	default:
		uc.logger.Info(in.TaskID, "dependency", fmt.Sprintf("[%s] now depends on %s", op, domain.TaskRef(in.DependsOnID)))
	}
	return &out, nil
}
