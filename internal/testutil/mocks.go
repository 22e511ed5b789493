// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// ErrForeignKey mirrors the storage engine rejecting a dangling reference.
var ErrForeignKey = errors.New("FOREIGN KEY constraint failed")

// MemStore is an in-memory domain.Store. Every unit of work runs against a
// private copy of the data that replaces the committed state only when the
// work succeeds, so a failed unit of work leaves nothing behind.
// Fields are ordered to minimize memory padding.
type MemStore struct {
	state memState

	// Error injection
	InitErr        error
	CommitErr      error // returned instead of committing
	GetTaskErr     error
	InsertEventErr error
	UpdateTaskErr  error

	mu sync.Mutex

	Initialized bool
	Commits     int
}

type memState struct {
	tasks    map[int64]domain.Task
	users    map[int64]domain.User
	tags     []domain.Tag
	taskTags map[int64][]int64
	collabs  map[int64][]int64
	deps     []domain.Dependency
	events   []domain.TaskEvent
	nextTask int64
	nextUser int64
	nextTag  int64
	nextEvt  int64
}

// NewMemStore creates an empty, initialized MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		Initialized: true,
		state: memState{
			tasks:    make(map[int64]domain.Task),
			users:    make(map[int64]domain.User),
			taskTags: make(map[int64][]int64),
			collabs:  make(map[int64][]int64),
		},
	}
}

var _ domain.Store = (*MemStore)(nil)

// Initialize marks the store as initialized.
func (m *MemStore) Initialize(_ context.Context) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Initialized = true
	return nil
}

// IsInitialized reports whether Initialize has run.
func (m *MemStore) IsInitialized(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Initialized
}

// WithTx runs fn against a copy of the data and commits the copy when fn
// succeeds and CommitErr is nil. Units of work are serialized.
func (m *MemStore) WithTx(_ context.Context, fn func(tx domain.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Initialized {
		return domain.ErrNotInitialized
	}

	work := m.state.clone()
	if err := fn(&memTx{s: &work, m: m}); err != nil {
		return err
	}
	if m.CommitErr != nil {
		return fmt.Errorf("commit transaction: %w", m.CommitErr)
	}
	m.state = work
	m.Commits++
	return nil
}

func (s memState) clone() memState {
	out := s
	out.tasks = make(map[int64]domain.Task, len(s.tasks))
	for id, t := range s.tasks {
		out.tasks[id] = t
	}
	out.users = make(map[int64]domain.User, len(s.users))
	for id, u := range s.users {
		out.users[id] = u
	}
	out.tags = slices.Clone(s.tags)
	out.taskTags = make(map[int64][]int64, len(s.taskTags))
	for id, ids := range s.taskTags {
		out.taskTags[id] = slices.Clone(ids)
	}
	out.collabs = make(map[int64][]int64, len(s.collabs))
	for id, ids := range s.collabs {
		out.collabs[id] = slices.Clone(ids)
	}
	out.deps = slices.Clone(s.deps)
	out.events = slices.Clone(s.events)
	return out
}

// AddUser seeds a committed user and returns it with its ID set.
func (m *MemStore) AddUser(email string, role domain.Role) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextUser++
	u := domain.User{ID: m.state.nextUser, Email: email, Role: role, Active: true}
	m.state.users[u.ID] = u
	return &u
}

// AddTask seeds a committed task without recording any event.
// Tags and collaborators on the task are linked as given.
func (m *MemStore) AddTask(task domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{s: &m.state, m: m}
	tags := task.TagNames()
	collabs := task.CollaboratorIDs
	_ = tx.InsertTask(context.Background(), &task)
	for _, name := range tags {
		tag, _ := tx.FindOrCreateTag(context.Background(), name)
		_ = tx.LinkTags(context.Background(), task.ID, []int64{tag.ID})
	}
	_ = tx.LinkCollaborators(context.Background(), task.ID, collabs)
	return tx.task(task.ID)
}

// Task returns the committed task with relations, or nil.
func (m *MemStore) Task(id int64) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{s: &m.state, m: m}).task(id)
}

// Events returns the committed events of a task in ledger order.
func (m *MemStore) Events(taskID int64) []domain.TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskEvent
	for _, e := range m.state.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out
}

// AllEvents returns every committed event.
func (m *MemStore) AllEvents() []domain.TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.events)
}

// Dependencies returns every committed dependency edge.
func (m *MemStore) Dependencies() []domain.Dependency {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.deps)
}

// TaskCount returns the number of committed tasks.
func (m *MemStore) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.tasks)
}

// memTx implements domain.Tx over a working copy.
type memTx struct {
	s *memState
	m *MemStore
}

var _ domain.Tx = (*memTx)(nil)

func (t *memTx) task(id int64) *domain.Task {
	stored, ok := t.s.tasks[id]
	if !ok {
		return nil
	}
	task := stored
	task.Tags = nil
	for _, tagID := range t.s.taskTags[id] {
		for _, tag := range t.s.tags {
			if tag.ID == tagID {
				task.Tags = append(task.Tags, tag)
			}
		}
	}
	task.CollaboratorIDs = slices.Clone(t.s.collabs[id])
	return &task
}

func (t *memTx) userExists(id *int64) bool {
	if id == nil {
		return true
	}
	_, ok := t.s.users[*id]
	return ok
}

func (t *memTx) checkRefs(task *domain.Task) error {
	if _, ok := t.s.users[task.CreatedByID]; !ok {
		return ErrForeignKey
	}
	if !t.userExists(task.AssigneeID) {
		return ErrForeignKey
	}
	if task.ParentID != nil {
		if _, ok := t.s.tasks[*task.ParentID]; !ok {
			return ErrForeignKey
		}
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil if not found.
func (t *memTx) GetTask(_ context.Context, id int64) (*domain.Task, error) {
	if t.m.GetTaskErr != nil {
		return nil, t.m.GetTaskErr
	}
	return t.task(id), nil
}

// ListTasks returns tasks matching the filter, ordered by ID.
func (t *memTx) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	ids := make([]int64, 0, len(t.s.tasks))
	for id := range t.s.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []*domain.Task
	for _, id := range ids {
		task := t.task(id)
		if matches(task, filter) {
			out = append(out, task)
		}
	}
	return out, nil
}

func matches(task *domain.Task, f domain.TaskFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, task.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, task.Priority) {
		return false
	}
	if len(f.AssigneeIDs) > 0 && (task.AssigneeID == nil || !slices.Contains(f.AssigneeIDs, *task.AssigneeID)) {
		return false
	}
	if f.CreatedFrom != nil && task.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && task.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.DueFrom != nil && (task.DueDate == nil || task.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (task.DueDate == nil || task.DueDate.After(*f.DueTo)) {
		return false
	}
	if len(f.TagNames) > 0 {
		found := false
		for _, name := range task.TagNames() {
			if slices.Contains(f.TagNames, name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// InsertTask stores a new task and sets its ID.
func (t *memTx) InsertTask(_ context.Context, task *domain.Task) error {
	if err := t.checkRefs(task); err != nil {
		return err
	}
	t.s.nextTask++
	task.ID = t.s.nextTask
	stored := *task
	stored.Tags = nil
	stored.CollaboratorIDs = nil
	t.s.tasks[task.ID] = stored
	return nil
}

// UpdateTask writes the scalar fields. The creator is kept.
func (t *memTx) UpdateTask(_ context.Context, task *domain.Task) error {
	if t.m.UpdateTaskErr != nil {
		return t.m.UpdateTaskErr
	}
	current, ok := t.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	stored := *task
	stored.CreatedByID = current.CreatedByID
	stored.CreatedAt = current.CreatedAt
	stored.Tags = nil
	stored.CollaboratorIDs = nil
	if err := t.checkRefs(&stored); err != nil {
		return err
	}
	t.s.tasks[task.ID] = stored
	return nil
}

// DeleteTask removes a task and everything that references it.
func (t *memTx) DeleteTask(_ context.Context, id int64) error {
	delete(t.s.tasks, id)
	delete(t.s.taskTags, id)
	delete(t.s.collabs, id)
	t.s.deps = slices.DeleteFunc(t.s.deps, func(d domain.Dependency) bool {
		return d.TaskID == id || d.DependsOnID == id
	})
	t.s.events = slices.DeleteFunc(t.s.events, func(e domain.TaskEvent) bool {
		return e.TaskID == id
	})
	for childID, child := range t.s.tasks {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			t.s.tasks[childID] = child
		}
	}
	return nil
}

// ParentIndex maps child IDs to parent IDs.
func (t *memTx) ParentIndex(_ context.Context) (map[int64]int64, error) {
	index := make(map[int64]int64)
	for id, task := range t.s.tasks {
		if task.ParentID != nil {
			index[id] = *task.ParentID
		}
	}
	return index, nil
}

// AssigneeLoads counts assigned tasks per user, ordered by user ID.
func (t *memTx) AssigneeLoads(_ context.Context, now time.Time) ([]domain.AssigneeLoad, error) {
	byUser := make(map[int64]*domain.AssigneeLoad)
	for _, task := range t.s.tasks {
		if task.AssigneeID == nil {
			continue
		}
		l, ok := byUser[*task.AssigneeID]
		if !ok {
			l = &domain.AssigneeLoad{UserID: *task.AssigneeID}
			byUser[*task.AssigneeID] = l
		}
		l.TotalTasks++
		if task.DueDate != nil && task.DueDate.Before(now) {
			l.OverdueTasks++
		}
	}
	var out []domain.AssigneeLoad
	for _, l := range byUser {
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b domain.AssigneeLoad) int {
		return int(a.UserID - b.UserID)
	})
	return out, nil
}

// FindOrCreateTag returns the tag with exactly this name.
func (t *memTx) FindOrCreateTag(_ context.Context, name string) (domain.Tag, error) {
	for _, tag := range t.s.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	t.s.nextTag++
	tag := domain.Tag{ID: t.s.nextTag, Name: name}
	t.s.tags = append(t.s.tags, tag)
	return tag, nil
}

// LinkTags attaches tags to a task.
func (t *memTx) LinkTags(_ context.Context, taskID int64, tagIDs []int64) error {
	if _, ok := t.s.tasks[taskID]; !ok {
		return ErrForeignKey
	}
	for _, id := range tagIDs {
		if !slices.Contains(t.s.taskTags[taskID], id) {
			t.s.taskTags[taskID] = append(t.s.taskTags[taskID], id)
		}
	}
	return nil
}

// UnlinkTags detaches tags from a task.
func (t *memTx) UnlinkTags(_ context.Context, taskID int64, tagIDs []int64) error {
	t.s.taskTags[taskID] = slices.DeleteFunc(t.s.taskTags[taskID], func(id int64) bool {
		return slices.Contains(tagIDs, id)
	})
	return nil
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (t *memTx) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email. Returns nil if not found.
func (t *memTx) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range t.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// InsertUser stores a new user and sets its ID.
func (t *memTx) InsertUser(_ context.Context, user *domain.User) error {
	for _, u := range t.s.users {
		if u.Email == user.Email {
			return errors.New("UNIQUE constraint failed: users.email")
		}
	}
	t.s.nextUser++
	user.ID = t.s.nextUser
	t.s.users[user.ID] = *user
	return nil
}

// ListUsers returns all users ordered by ID.
func (t *memTx) ListUsers(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range t.s.users {
		out = append(out, &u)
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		return int(a.ID - b.ID)
	})
	return out, nil
}

// ExistingUserIDs returns the ids that refer to users, in input order.
func (t *memTx) ExistingUserIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if _, ok := t.s.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// LinkCollaborators attaches users to a task.
func (t *memTx) LinkCollaborators(_ context.Context, taskID int64, userIDs []int64) error {
	for _, id := range userIDs {
		if _, ok := t.s.users[id]; !ok {
			return ErrForeignKey
		}
		if !slices.Contains(t.s.collabs[taskID], id) {
			t.s.collabs[taskID] = append(t.s.collabs[taskID], id)
		}
	}
	return nil
}

// UnlinkCollaborators detaches users from a task.
func (t *memTx) UnlinkCollaborators(_ context.Context, taskID int64, userIDs []int64) error {
	t.s.collabs[taskID] = slices.DeleteFunc(t.s.collabs[taskID], func(id int64) bool {
		return slices.Contains(userIDs, id)
	})
	return nil
}

// InsertEvent appends an event and sets its ID.
func (t *memTx) InsertEvent(_ context.Context, event *domain.TaskEvent) error {
	if t.m.InsertEventErr != nil {
		return t.m.InsertEventErr
	}
	if _, ok := t.s.tasks[event.TaskID]; !ok {
		return ErrForeignKey
	}
	t.s.nextEvt++
	event.ID = t.s.nextEvt
	t.s.events = append(t.s.events, *event)
	return nil
}

// ListEvents returns a task's events ordered by created_at, then ID.
func (t *memTx) ListEvents(_ context.Context, taskID int64) ([]domain.TaskEvent, error) {
	var out []domain.TaskEvent
	for _, e := range t.s.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TaskEvent) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

// TimelineEvents returns events since the given time on tasks the user
// created or is assigned to, newest first.
func (t *memTx) TimelineEvents(_ context.Context, userID int64, since time.Time) ([]domain.TaskEvent, error) {
	var out []domain.TaskEvent
	for _, e := range t.s.events {
		task, ok := t.s.tasks[e.TaskID]
		if !ok || e.CreatedAt.Before(since) {
			continue
		}
		if task.CreatedByID == userID || (task.AssigneeID != nil && *task.AssigneeID == userID) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TaskEvent) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out, nil
}

// DependencyExists reports whether the edge is stored.
func (t *memTx) DependencyExists(_ context.Context, dep domain.Dependency) (bool, error) {
	return slices.Contains(t.s.deps, dep), nil
}

// InsertDependency stores a new edge.
func (t *memTx) InsertDependency(_ context.Context, dep domain.Dependency) error {
	if dep.TaskID == dep.DependsOnID {
		return errors.New("CHECK constraint failed")
	}
	if slices.Contains(t.s.deps, dep) {
		return errors.New("UNIQUE constraint failed: task_dependencies.task_id, task_dependencies.depends_on_id")
	}
	t.s.deps = append(t.s.deps, dep)
	return nil
}

// ListDependencies returns the IDs taskID depends on, ascending.
func (t *memTx) ListDependencies(_ context.Context, taskID int64) ([]int64, error) {
	var out []int64
	for _, d := range t.s.deps {
		if d.TaskID == taskID {
			out = append(out, d.DependsOnID)
		}
	}
	slices.Sort(out)
	return out, nil
}

// AllDependencies returns every stored edge.
func (t *memTx) AllDependencies(_ context.Context) ([]domain.Dependency, error) {
	return slices.Clone(t.s.deps), nil
}

// LogEntry is one message captured by RecordingLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int64
}

// RecordingLogger is a domain.Logger that keeps every message.
type RecordingLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (l *RecordingLogger) record(level string, taskID int64, category, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info message.
func (l *RecordingLogger) Info(taskID int64, category, msg string) {
	l.record("INFO", taskID, category, msg)
}

// Debug records a debug message.
func (l *RecordingLogger) Debug(taskID int64, category, msg string) {
	l.record("DEBUG", taskID, category, msg)
}

// Warn records a warning.
func (l *RecordingLogger) Warn(taskID int64, category, msg string) {
	l.record("WARN", taskID, category, msg)
}

// Error records an error.
func (l *RecordingLogger) Error(taskID int64, category, msg string) {
	l.record("ERROR", taskID, category, msg)
}

// Levels returns the levels of all entries for a category, in order.
func (l *RecordingLogger) Levels(category string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.Entries {
		if e.Category == category {
			out = append(out, e.Level)
		}
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
}

// NewMockConfigLoader returns a loader that serves the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the global config, falling back to Config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	Written *domain.Config
	InitErr error
	Local   domain.ConfigInfo
	Global  domain.ConfigInfo
}

// NewMockConfigManager returns a manager with no config files.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{}
}

// LocalConfigInfo returns Local.
func (m *MockConfigManager) LocalConfigInfo() domain.ConfigInfo {
	return m.Local
}

// GlobalConfigInfo returns Global.
func (m *MockConfigManager) GlobalConfigInfo() domain.ConfigInfo {
	return m.Global
}

// InitLocalConfig records cfg unless the local file already exists.
func (m *MockConfigManager) InitLocalConfig(cfg *domain.Config) (string, error) {
	if m.InitErr != nil {
		return "", m.InitErr
	}
	if m.Local.Exists {
		return m.Local.Path, domain.ErrConfigExists
	}
	m.Written = cfg
	m.Local.Exists = true
	return m.Local.Path, nil
}
