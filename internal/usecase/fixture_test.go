package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/testutil"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixture is a store seeded with one user per relation to a task.
type fixture struct {
	store    *testutil.MemStore
	clock    *testutil.MockClock
	logger   *testutil.RecordingLogger
	admin    *domain.User
	manager  *domain.User
	creator  *domain.User
	assignee *domain.User
	stranger *domain.User
	task     *domain.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	f := &fixture{
		store:    store,
		clock:    &testutil.MockClock{NowTime: testNow},
		logger:   &testutil.RecordingLogger{},
		admin:    store.AddUser("admin@example.com", domain.RoleAdmin),
		manager:  store.AddUser("manager@example.com", domain.RoleManager),
		creator:  store.AddUser("creator@example.com", domain.RoleMember),
		assignee: store.AddUser("assignee@example.com", domain.RoleMember),
		stranger: store.AddUser("stranger@example.com", domain.RoleMember),
	}
	created := testNow.Add(-24 * time.Hour)
	f.task = store.AddTask(domain.Task{
		Title:       "Write docs",
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: f.creator.ID,
		AssigneeID:  &f.assignee.ID,
		CreatedAt:   created,
		UpdatedAt:   created,
	})
	return f
}

func (f *fixture) addTask(title string) *domain.Task {
	return f.store.AddTask(domain.Task{
		Title:       title,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: f.creator.ID,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	})
}

func ptr[T any](v T) *T {
	return &v
}
