// Package domain contains core business entities and interfaces.
package domain

import (
	"time"
)

// Task represents a unit of collaborative work.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt       time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" yaml:"updated_at"`
	Description     *string    `json:"description" yaml:"description,omitempty"` // Description (optional)
	DueDate         *time.Time `json:"due_date" yaml:"due_date,omitempty"`       // Due date (optional)
	AssigneeID      *int64     `json:"assignee_id" yaml:"assignee_id,omitempty"` // Assigned user (optional)
	ParentID        *int64     `json:"parent_id" yaml:"parent_id,omitempty"`     // Parent task ID (nil = root task)
	Title           string     `json:"title" yaml:"title"`                       // Title (required)
	Status          Status     `json:"status" yaml:"status"`
	Priority        Priority   `json:"priority" yaml:"priority"`
	Tags            []Tag      `json:"tags" yaml:"tags,omitempty"`
	CollaboratorIDs []int64    `json:"collaborator_ids" yaml:"collaborator_ids,omitempty"`
	ID              int64      `json:"id" yaml:"id"`
	CreatedByID     int64      `json:"created_by_id" yaml:"created_by_id"` // Set once at creation
}

// IsRoot returns true if this is a root task (no parent).
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// TagNames returns the names of the task's tags in stored order.
func (t *Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// IsOverdue reports whether the task has a due date before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// Tag is a label that can be attached to many tasks.
type Tag struct {
	Name string `json:"name" yaml:"name"`
	ID   int64  `json:"id" yaml:"id"`
}

// Dependency is an ordered edge: TaskID depends on DependsOnID.
type Dependency struct {
	TaskID      int64 `json:"task_id"`
	DependsOnID int64 `json:"depends_on_id"`
}

// TaskFilter specifies criteria for listing tasks.
// Empty slices and nil pointers mean "no constraint".
type TaskFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	DueFrom     *time.Time
	DueTo       *time.Time
	Statuses    []Status
	Priorities  []Priority
	AssigneeIDs []int64
	TagNames    []string
}

// AssigneeLoad is one row of the task distribution report.
type AssigneeLoad struct {
	UserID       int64 `json:"user_id"`
	TotalTasks   int   `json:"total_tasks"`
	OverdueTasks int   `json:"overdue_tasks"`
}
