package domain

import (
	"strconv"
	"time"
)

// EventType classifies an audit ledger entry.
type EventType string

// Event types.
const (
	EventCreate        EventType = "create"
	EventUpdate        EventType = "update"
	EventAddDependency EventType = "add_dependency"
)

// TaskEvent is an append-only audit ledger entry.
// Fields are ordered to minimize memory padding.
type TaskEvent struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UserID    *int64    `json:"user_id" yaml:"user_id,omitempty"` // nil for system events
	Field     *string   `json:"field" yaml:"field,omitempty"`
	OldValue  *string   `json:"old_value" yaml:"old_value,omitempty"`
	NewValue  *string   `json:"new_value" yaml:"new_value,omitempty"`
	Type      EventType `json:"event_type" yaml:"event_type"`
	ID        int64     `json:"id" yaml:"id"`
	TaskID    int64     `json:"task_id" yaml:"task_id"`
}

// IsSystemEvent returns true if no user caused the event.
func (e *TaskEvent) IsSystemEvent() bool {
	return e.UserID == nil
}

// NewCreateEvent returns the single event that accompanies a new task.
func NewCreateEvent(taskID int64, actor Actor, now time.Time) TaskEvent {
	return TaskEvent{
		TaskID:    taskID,
		UserID:    actorRef(actor),
		Type:      EventCreate,
		CreatedAt: now,
	}
}

// NewUpdateEvents returns one update event per change, in change order.
func NewUpdateEvents(taskID int64, actor Actor, changes []Change, now time.Time) []TaskEvent {
	events := make([]TaskEvent, 0, len(changes))
	for _, c := range changes {
		field := c.Field
		events = append(events, TaskEvent{
			TaskID:    taskID,
			UserID:    actorRef(actor),
			Type:      EventUpdate,
			Field:     &field,
			OldValue:  c.Old,
			NewValue:  c.New,
			CreatedAt: now,
		})
	}
	return events
}

// NewDependencyEvent returns the event recorded when taskID starts depending on dependsOnID.
func NewDependencyEvent(taskID, dependsOnID int64, actor Actor, now time.Time) TaskEvent {
	field := FieldDependsOn
	value := strconv.FormatInt(dependsOnID, 10)
	return TaskEvent{
		TaskID:    taskID,
		UserID:    actorRef(actor),
		Type:      EventAddDependency,
		Field:     &field,
		NewValue:  &value,
		CreatedAt: now,
	}
}

// actorRef returns nil for the zero actor so that system-originated events
// carry no user.
func actorRef(actor Actor) *int64 {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}
