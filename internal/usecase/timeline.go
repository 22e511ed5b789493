package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
)

// Timeline window bounds, in days.
const (
	DefaultTimelineDays = 7
	MaxTimelineDays     = 90
)

// TimelineInput contains the parameters for the activity timeline.
type TimelineInput struct {
	Actor domain.Actor // Whose timeline
	Days  int          // Window size, 1..90 (0 = default)
}

// TimelineOutput contains events newest first.
type TimelineOutput struct {
	Since  time.Time
	Events []domain.TaskEvent
}

// Timeline is the use case for recent activity on the actor's tasks.
type Timeline struct {
	store domain.Store
	clock domain.Clock
}

// NewTimeline creates a new Timeline use case.
func NewTimeline(store domain.Store, clock domain.Clock) *Timeline {
	return &Timeline{store: store, clock: clock}
}

// Execute returns events of the last Days days on tasks the actor created
// or is assigned to.
func (uc *Timeline) Execute(ctx context.Context, in TimelineInput) (*TimelineOutput, error) {
	days := in.Days
	if days == 0 {
		days = DefaultTimelineDays
	}
	if days < 1 || days > MaxTimelineDays {
		return nil, domain.ErrInvalidWindow
	}

	since := uc.clock.Now().AddDate(0, 0, -days)
	var events []domain.TaskEvent
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		var err error
		if events, err = tx.TimelineEvents(ctx, in.Actor.ID, since); err != nil {
			return fmt.Errorf("timeline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Since: since, Events: events}, nil
}
