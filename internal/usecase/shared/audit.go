package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/runoshun/taskhub/internal/domain"
)

// RecordEvents appends events to the ledger in order. Any failure aborts
// the caller's unit of work.
func RecordEvents(ctx context.Context, repo domain.EventRepository, events []domain.TaskEvent) error {
	for i := range events {
		if err := repo.InsertEvent(ctx, &events[i]); err != nil {
			return fmt.Errorf("record %s event: %w", events[i].Type, err)
		}
	}
	return nil
}

// NewOpID returns a short identifier that ties together the log lines of
// one unit of work.
func NewOpID() string {
	return uuid.NewString()[:8]
}
