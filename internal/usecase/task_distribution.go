package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

// TaskDistributionOutput contains per-assignee task counts.
type TaskDistributionOutput struct {
	Loads []domain.AssigneeLoad // Ordered by user ID
}

// TaskDistribution is the use case for reporting how work is spread across assignees.
type TaskDistribution struct {
	store domain.Store
	clock domain.Clock
}

// NewTaskDistribution creates a new TaskDistribution use case.
func NewTaskDistribution(store domain.Store, clock domain.Clock) *TaskDistribution {
	return &TaskDistribution{store: store, clock: clock}
}

// Execute counts total and overdue tasks per assignee.
func (uc *TaskDistribution) Execute(ctx context.Context) (*TaskDistributionOutput, error) {
	now := uc.clock.Now()
	var loads []domain.AssigneeLoad
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		var err error
		if loads, err = tx.AssigneeLoads(ctx, now); err != nil {
			return fmt.Errorf("task distribution: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TaskDistributionOutput{Loads: loads}, nil
}
