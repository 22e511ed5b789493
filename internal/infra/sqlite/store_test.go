package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "taskhub.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func seedUser(t *testing.T, store *Store, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Role: role, Active: true, CreatedAt: time.Now()}
	require.NoError(t, store.WithTx(context.Background(), func(tx domain.Tx) error {
		return tx.InsertUser(context.Background(), u)
	}))
	return u
}

func seedTask(t *testing.T, store *Store, title string, creator int64) *domain.Task {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &domain.Task{
		Title:       title,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.WithTx(context.Background(), func(tx domain.Tx) error {
		return tx.InsertTask(context.Background(), task)
	}))
	return task
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "taskhub.db"), Options{})
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.IsInitialized(ctx))

	// Unit of work before initialization reports a clear error
	err = store.WithTx(ctx, func(tx domain.Tx) error {
		_, err := tx.GetTask(ctx, 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	require.NoError(t, store.Initialize(ctx))
	assert.True(t, store.IsInitialized(ctx))

	// Initialize again should be idempotent
	require.NoError(t, store.Initialize(ctx))
}

func TestStore_InsertAndGetTask(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)

	desc := "Cut the tag"
	due := time.Date(2026, 2, 1, 9, 30, 0, 123, time.UTC)
	task := &domain.Task{
		Title:       "Ship release",
		Description: &desc,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityHigh,
		DueDate:     &due,
		CreatedByID: creator.ID,
		AssigneeID:  &creator.ID,
		CreatedAt:   due,
		UpdatedAt:   due,
	}

	var got *domain.Task
	err := store.WithTx(ctx, func(tx domain.Tx) error {
		if err := tx.InsertTask(ctx, task); err != nil {
			return err
		}
		var err error
		got, err = tx.GetTask(ctx, task.ID)
		return err
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Ship release", got.Title)
	assert.Equal(t, "Cut the tag", *got.Description)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, creator.ID, *got.AssigneeID)
	assert.Nil(t, got.ParentID)
	assert.Empty(t, got.Tags)
}

func TestStore_GetTask_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		task, err := tx.GetTask(ctx, 42)
		assert.Nil(t, task)
		return err
	})
	assert.NoError(t, err)
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		task := &domain.Task{Title: "t", Status: domain.StatusTodo, Priority: domain.PriorityLow, CreatedByID: creator.ID}
		if err := tx.InsertTask(ctx, task); err != nil {
			return err
		}
		e := domain.NewCreateEvent(task.ID, creator.Actor(), time.Now())
		if err := tx.InsertEvent(ctx, &e); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		tasks, err := tx.ListTasks(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Empty(t, tasks)
		events, err := tx.ListEvents(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, events)
		return nil
	})
}

func TestStore_WithTx_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.Panics(t, func() {
		_ = store.WithTx(ctx, func(tx domain.Tx) error {
			u := &domain.User{Email: "p@example.com", Role: domain.RoleMember, CreatedAt: time.Now()}
			_ = tx.InsertUser(ctx, u)
			panic("unexpected")
		})
	})

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		u, err := tx.GetUserByEmail(ctx, "p@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
		return nil
	})
}

func TestStore_UpdateTask_KeepsCreator(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	other := seedUser(t, store, "b@example.com", domain.RoleMember)
	task := seedTask(t, store, "Original", creator.ID)

	task.Title = "Renamed"
	task.Status = domain.StatusDone
	task.CreatedByID = other.ID
	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		return tx.UpdateTask(ctx, task)
	}))

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		got, err := tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, domain.StatusDone, got.Status)
		assert.Equal(t, creator.ID, got.CreatedByID)
		return nil
	})
}

func TestStore_UpdateTask_Missing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		return tx.UpdateTask(ctx, &domain.Task{ID: 99, Title: "x", Status: domain.StatusTodo, Priority: domain.PriorityLow})
	})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_Tags(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	task := seedTask(t, store, "Tagged", creator.ID)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		urgent, err := tx.FindOrCreateTag(ctx, "urgent")
		require.NoError(t, err)
		again, err := tx.FindOrCreateTag(ctx, "urgent")
		require.NoError(t, err)
		assert.Equal(t, urgent.ID, again.ID)

		upper, err := tx.FindOrCreateTag(ctx, "Urgent")
		require.NoError(t, err)
		assert.NotEqual(t, urgent.ID, upper.ID)

		release, err := tx.FindOrCreateTag(ctx, "release")
		require.NoError(t, err)

		require.NoError(t, tx.LinkTags(ctx, task.ID, []int64{urgent.ID, release.ID, urgent.ID}))
		got, err := tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"urgent", "release"}, got.TagNames())

		require.NoError(t, tx.UnlinkTags(ctx, task.ID, []int64{urgent.ID}))
		got, err = tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"release"}, got.TagNames())
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Collaborators(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := seedUser(t, store, "a@example.com", domain.RoleMember)
	b := seedUser(t, store, "b@example.com", domain.RoleMember)
	task := seedTask(t, store, "Shared", a.ID)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		ids, err := tx.ExistingUserIDs(ctx, []int64{b.ID, 999, a.ID})
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID, a.ID}, ids)

		require.NoError(t, tx.LinkCollaborators(ctx, task.ID, ids))
		got, err := tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID, a.ID}, got.CollaboratorIDs)

		require.NoError(t, tx.UnlinkCollaborators(ctx, task.ID, []int64{b.ID}))
		got, err = tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID}, got.CollaboratorIDs)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Dependencies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	a := seedTask(t, store, "A", creator.ID)
	b := seedTask(t, store, "B", creator.ID)
	c := seedTask(t, store, "C", creator.ID)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		dep := domain.Dependency{TaskID: a.ID, DependsOnID: c.ID}
		exists, err := tx.DependencyExists(ctx, dep)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, tx.InsertDependency(ctx, dep))
		require.NoError(t, tx.InsertDependency(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: b.ID}))

		exists, err = tx.DependencyExists(ctx, dep)
		require.NoError(t, err)
		assert.True(t, exists)

		// Unique pair
		assert.Error(t, tx.InsertDependency(ctx, dep))
		return nil
	})
	require.NoError(t, err)

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		ids, err := tx.ListDependencies(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID, c.ID}, ids)

		all, err := tx.AllDependencies(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		return nil
	})
}

func TestStore_SelfDependencyRejectedBySchema(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	a := seedTask(t, store, "A", creator.ID)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		return tx.InsertDependency(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: a.ID})
	})
	assert.Error(t, err)
}

func TestStore_DeleteTask_Cascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	parent := seedTask(t, store, "Parent", creator.ID)
	child := seedTask(t, store, "Child", creator.ID)
	other := seedTask(t, store, "Other", creator.ID)

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		child.ParentID = &parent.ID
		if err := tx.UpdateTask(ctx, child); err != nil {
			return err
		}
		tag, err := tx.FindOrCreateTag(ctx, "x")
		if err != nil {
			return err
		}
		if err := tx.LinkTags(ctx, parent.ID, []int64{tag.ID}); err != nil {
			return err
		}
		if err := tx.LinkCollaborators(ctx, parent.ID, []int64{creator.ID}); err != nil {
			return err
		}
		if err := tx.InsertDependency(ctx, domain.Dependency{TaskID: other.ID, DependsOnID: parent.ID}); err != nil {
			return err
		}
		e := domain.NewCreateEvent(parent.ID, creator.Actor(), time.Now())
		return tx.InsertEvent(ctx, &e)
	}))

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		return tx.DeleteTask(ctx, parent.ID)
	}))

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		got, err := tx.GetTask(ctx, parent.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		events, err := tx.ListEvents(ctx, parent.ID)
		require.NoError(t, err)
		assert.Empty(t, events)

		deps, err := tx.ListDependencies(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, deps)

		orphan, err := tx.GetTask(ctx, child.ID)
		require.NoError(t, err)
		assert.Nil(t, orphan.ParentID)
		return nil
	})
}

func TestStore_EventsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	task := seedTask(t, store, "A", creator.ID)

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		e := domain.NewCreateEvent(task.ID, creator.Actor(), time.Now())
		return tx.InsertEvent(ctx, &e)
	}))

	_, err := store.db.ExecContext(ctx, "UPDATE task_events SET event_type = 'update'")
	assert.Error(t, err)
}

func TestStore_ListEvents_Order(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := seedUser(t, store, "a@example.com", domain.RoleMember)
	task := seedTask(t, store, "A", creator.ID)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		later := domain.NewDependencyEvent(task.ID, 2, creator.Actor(), t0.Add(time.Hour))
		first := domain.NewCreateEvent(task.ID, creator.Actor(), t0)
		sameTime := domain.NewUpdateEvents(task.ID, creator.Actor(), []domain.Change{
			{Field: domain.FieldTitle},
			{Field: domain.FieldStatus},
		}, t0.Add(time.Minute))
		for _, e := range []*domain.TaskEvent{&later, &first, &sameTime[0], &sameTime[1]} {
			if err := tx.InsertEvent(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}))

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		events, err := tx.ListEvents(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, domain.EventCreate, events[0].Type)
		assert.Equal(t, domain.FieldTitle, *events[1].Field)
		assert.Equal(t, domain.FieldStatus, *events[2].Field)
		assert.Equal(t, domain.EventAddDependency, events[3].Type)
		assert.Equal(t, "2", *events[3].NewValue)
		return nil
	})
}

func TestStore_ListTasks_Filters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := seedUser(t, store, "a@example.com", domain.RoleMember)
	b := seedUser(t, store, "b@example.com", domain.RoleMember)
	t1 := seedTask(t, store, "one", a.ID)
	t2 := seedTask(t, store, "two", a.ID)
	t3 := seedTask(t, store, "three", a.ID)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		t1.Status = domain.StatusDone
		t1.AssigneeID = &b.ID
		if err := tx.UpdateTask(ctx, t1); err != nil {
			return err
		}
		t2.Priority = domain.PriorityHigh
		t2.DueDate = &due
		if err := tx.UpdateTask(ctx, t2); err != nil {
			return err
		}
		x, _ := tx.FindOrCreateTag(ctx, "x")
		y, _ := tx.FindOrCreateTag(ctx, "y")
		if err := tx.LinkTags(ctx, t3.ID, []int64{x.ID, y.ID}); err != nil {
			return err
		}
		return tx.LinkTags(ctx, t2.ID, []int64{y.ID})
	}))

	ids := func(tasks []*domain.Task) []int64 {
		out := []int64{}
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}
	from := due.Add(-time.Hour)

	tests := []struct {
		name   string
		filter domain.TaskFilter
		want   []int64
	}{
		{"no filter", domain.TaskFilter{}, []int64{t1.ID, t2.ID, t3.ID}},
		{"status", domain.TaskFilter{Statuses: []domain.Status{domain.StatusDone}}, []int64{t1.ID}},
		{"priority", domain.TaskFilter{Priorities: []domain.Priority{domain.PriorityHigh, domain.PriorityLow}}, []int64{t2.ID}},
		{"assignee", domain.TaskFilter{AssigneeIDs: []int64{b.ID}}, []int64{t1.ID}},
		{"tag no duplicates", domain.TaskFilter{TagNames: []string{"x", "y"}}, []int64{t2.ID, t3.ID}},
		{"due window", domain.TaskFilter{DueFrom: &from}, []int64{t2.ID}},
		{"combined", domain.TaskFilter{TagNames: []string{"y"}, Priorities: []domain.Priority{domain.PriorityMedium}}, []int64{t3.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = store.WithTx(ctx, func(tx domain.Tx) error {
				tasks, err := tx.ListTasks(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(tasks))
				return nil
			})
		})
	}
}

func TestStore_AssigneeLoadsAndTimeline(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := seedUser(t, store, "a@example.com", domain.RoleMember)
	b := seedUser(t, store, "b@example.com", domain.RoleMember)
	t1 := seedTask(t, store, "one", a.ID)
	t2 := seedTask(t, store, "two", a.ID)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)

	require.NoError(t, store.WithTx(ctx, func(tx domain.Tx) error {
		t1.AssigneeID = &b.ID
		t1.DueDate = &past
		if err := tx.UpdateTask(ctx, t1); err != nil {
			return err
		}
		t2.AssigneeID = &b.ID
		if err := tx.UpdateTask(ctx, t2); err != nil {
			return err
		}
		old := domain.NewCreateEvent(t1.ID, a.Actor(), now.Add(-30*24*time.Hour))
		recent := domain.NewCreateEvent(t2.ID, a.Actor(), now.Add(-time.Hour))
		if err := tx.InsertEvent(ctx, &old); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, &recent)
	}))

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		loads, err := tx.AssigneeLoads(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, []domain.AssigneeLoad{{UserID: b.ID, TotalTasks: 2, OverdueTasks: 1}}, loads)

		events, err := tx.TimelineEvents(ctx, b.ID, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, t2.ID, events[0].TaskID)

		none, err := tx.TimelineEvents(ctx, 999, now.Add(-90*24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, none)
		return nil
	})
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := seedUser(t, store, "a@example.com", domain.RoleAdmin)

	err := store.WithTx(ctx, func(tx domain.Tx) error {
		got, err := tx.GetUser(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", got.Email)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.True(t, got.Active)

		dup := &domain.User{Email: "a@example.com", Role: domain.RoleMember, CreatedAt: time.Now()}
		assert.Error(t, tx.InsertUser(ctx, dup))
		return nil
	})
	require.NoError(t, err)

	_ = store.WithTx(ctx, func(tx domain.Tx) error {
		users, err := tx.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		return nil
	})
}
