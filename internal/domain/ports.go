package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store schema if it doesn't exist.
	Initialize(ctx context.Context) error

	// IsInitialized reports whether the schema exists.
	IsInitialized(ctx context.Context) bool
}

// Store provides units of work against the persistence engine.
type Store interface {
	StoreInitializer

	// WithTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back on error or panic. The Tx must not be used
	// after fn returns.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view of the store handed to a unit of work.
type Tx interface {
	TaskRepository
	TagRepository
	UserRepository
	EventRepository
	DependencyRepository
}

// TaskRepository manages task rows.
type TaskRepository interface {
	// GetTask retrieves a task by ID with tags and collaborators resolved.
	// Returns nil if not found.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// ListTasks retrieves tasks matching the filter, ordered by ID.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// InsertTask stores a new task and sets its ID. Relations are not written.
	InsertTask(ctx context.Context, task *Task) error

	// UpdateTask writes the mutable scalar fields of task. The creator is never updated.
	UpdateTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task together with its relation rows,
	// dependency edges, and events.
	DeleteTask(ctx context.Context, id int64) error

	// ParentIndex maps every child task ID to its parent ID.
	ParentIndex(ctx context.Context) (map[int64]int64, error)

	// AssigneeLoads counts assigned tasks per user; overdue means due before now.
	AssigneeLoads(ctx context.Context, now time.Time) ([]AssigneeLoad, error)
}

// TagRepository manages tags and the task-tag association.
type TagRepository interface {
	// FindOrCreateTag returns the tag with exactly this name, creating it if needed.
	FindOrCreateTag(ctx context.Context, name string) (Tag, error)

	// LinkTags attaches tags to a task. Already linked tags are ignored.
	LinkTags(ctx context.Context, taskID int64, tagIDs []int64) error

	// UnlinkTags detaches tags from a task.
	UnlinkTags(ctx context.Context, taskID int64, tagIDs []int64) error
}

// UserRepository manages users and the task-collaborator association.
type UserRepository interface {
	// GetUser retrieves a user by ID. Returns nil if not found.
	GetUser(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email. Returns nil if not found.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// InsertUser stores a new user and sets its ID.
	InsertUser(ctx context.Context, user *User) error

	// ListUsers returns all users ordered by ID.
	ListUsers(ctx context.Context) ([]*User, error)

	// ExistingUserIDs returns the subset of ids that refer to users, in input order.
	ExistingUserIDs(ctx context.Context, ids []int64) ([]int64, error)

	// LinkCollaborators attaches users to a task. Already linked users are ignored.
	LinkCollaborators(ctx context.Context, taskID int64, userIDs []int64) error

	// UnlinkCollaborators detaches users from a task.
	UnlinkCollaborators(ctx context.Context, taskID int64, userIDs []int64) error
}

// EventRepository is the append-only audit ledger.
type EventRepository interface {
	// InsertEvent appends an event and sets its ID.
	InsertEvent(ctx context.Context, event *TaskEvent) error

	// ListEvents returns a task's events ordered by created_at, then ID.
	ListEvents(ctx context.Context, taskID int64) ([]TaskEvent, error)

	// TimelineEvents returns events since the given time on tasks the user
	// created or is assigned to, newest first.
	TimelineEvents(ctx context.Context, userID int64, since time.Time) ([]TaskEvent, error)
}

// DependencyRepository manages dependency edges.
type DependencyRepository interface {
	// DependencyExists reports whether the edge is stored.
	DependencyExists(ctx context.Context, dep Dependency) (bool, error)

	// InsertDependency stores a new edge.
	InsertDependency(ctx context.Context, dep Dependency) error

	// ListDependencies returns the IDs taskID directly depends on, ascending.
	ListDependencies(ctx context.Context, taskID int64) ([]int64, error)

	// AllDependencies returns every stored edge.
	AllDependencies(ctx context.Context) ([]Dependency, error)
}

// Logger records operational messages, globally and per task.
type Logger interface {
	Info(taskID int64, category, msg string)
	Debug(taskID int64, category, msg string)
	Warn(taskID int64, category, msg string)
	Error(taskID int64, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(int64, string, string)  {}
func (NopLogger) Debug(int64, string, string) {}
func (NopLogger) Warn(int64, string, string)  {}
func (NopLogger) Error(int64, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (global + local).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
