package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
}

// newTestServer returns a server over an in-memory store seeded with an
// admin (1), a member who creates tasks (2) and an unrelated member (3).
func newTestServer(t *testing.T) (*Server, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	store.AddUser("admin@example.com", domain.RoleAdmin)
	store.AddUser("creator@example.com", domain.RoleMember)
	store.AddUser("bystander@example.com", domain.RoleMember)

	c := app.NewWithDeps(
		app.Config{},
		store,
		&testutil.MockClock{NowTime: testNow},
		&testutil.RecordingLogger{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return NewServer(c), store
}

func seedTask(store *testutil.MemStore, title string) *domain.Task {
	return store.AddTask(domain.Task{
		Title:       title,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: 2,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	})
}

// do sends a request and decodes the envelope when there is a body.
func do(t *testing.T, s *Server, method, path, actor string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(HeaderActor, actor)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestCreateTask(t *testing.T) {
	// Setup
	s, store := newTestServer(t)

	// Execute
	rec, env := do(t, s, http.MethodPost, "/api/tasks", "2", map[string]any{
		"title":    "Ship it",
		"priority": "high",
		"tag_names": []string{"release"},
	})

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	var task domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, int64(2), task.CreatedByID)
	assert.Equal(t, []string{"release"}, task.TagNames())
	assert.Equal(t, []string{"release"}, store.Task(1).TagNames())
	assert.Len(t, store.Events(1), 1)
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		body   any
		name   string
		actor  string
		status int
	}{
		{name: "missing actor", body: map[string]any{"title": "x"}, status: http.StatusUnauthorized},
		{name: "unknown actor", actor: "99", body: map[string]any{"title": "x"}, status: http.StatusUnauthorized},
		{name: "empty title", actor: "2", body: map[string]any{"title": ""}, status: http.StatusBadRequest},
		{name: "bad status", actor: "2", body: map[string]any{"title": "x", "status": "someday"}, status: http.StatusBadRequest},
		{name: "missing parent", actor: "2", body: map[string]any{"title": "x", "parent_id": 42}, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)

			rec, env := do(t, s, http.MethodPost, "/api/tasks", tt.actor, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
			assert.NotEmpty(t, env.RequestID)
			assert.Equal(t, 0, store.TaskCount())
		})
	}
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))

	rec2, _ := do(t, s, http.MethodGet, "/api/users", "", nil)
	assert.NotEmpty(t, rec2.Header().Get(HeaderRequestID))
}

func TestUpdateTask(t *testing.T) {
	t.Run("records changes", func(t *testing.T) {
		s, store := newTestServer(t)
		seedTask(store, "Draft")

		rec, env := do(t, s, http.MethodPatch, "/api/tasks/1", "creator@example.com", map[string]any{
			"status": "in_progress",
			"title":  "Draft",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Task    domain.Task `json:"task"`
			Changed int         `json:"changed"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 1, data.Changed)
		assert.Equal(t, domain.StatusInProgress, data.Task.Status)
		assert.Len(t, store.Events(1), 1)
	})

	t.Run("replaces tags", func(t *testing.T) {
		s, store := newTestServer(t)
		seedTask(store, "Draft")

		rec, env := do(t, s, http.MethodPatch, "/api/tasks/1", "2", map[string]any{
			"tag_names": []string{"urgent", "release"},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Task    domain.Task `json:"task"`
			Changed int         `json:"changed"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 1, data.Changed)
		assert.Equal(t, []string{"urgent", "release"}, data.Task.TagNames())
		assert.Equal(t, []string{"urgent", "release"}, store.Task(1).TagNames())

		events := store.Events(1)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventUpdate, events[0].Type)
		require.NotNil(t, events[0].Field)
		assert.Equal(t, "tags", *events[0].Field)
	})

	t.Run("forbidden", func(t *testing.T) {
		s, store := newTestServer(t)
		seedTask(store, "Draft")

		rec, _ := do(t, s, http.MethodPatch, "/api/tasks/1", "3", map[string]any{"title": "Mine now"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Draft", store.Task(1).Title)
	})

	t.Run("not found", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec, _ := do(t, s, http.MethodPatch, "/api/tasks/5", "1", map[string]any{"title": "x"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec, env := do(t, s, http.MethodPatch, "/api/tasks/abc", "1", map[string]any{"title": "x"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errBadTaskID.Error(), env.Error)
	})
}

func TestDeleteTask(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "Doomed")

	rec, _ := do(t, s, http.MethodDelete, "/api/tasks/1", "2", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, store.Task(1))
}

func TestGetAndListTasks(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "One")
	seedTask(store, "Two")

	rec, env := do(t, s, http.MethodGet, "/api/tasks/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Task      domain.Task `json:"task"`
		DependsOn []int64     `json:"depends_on"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Two", detail.Task.Title)

	rec, env = do(t, s, http.MethodGet, "/api/tasks?status=todo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, 2)

	rec, env = do(t, s, http.MethodGet, "/api/tasks?status=done", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, _ = do(t, s, http.MethodGet, "/api/tasks?due_from=tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkUpdate(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "One")
	seedTask(store, "Two")

	rec, env := do(t, s, http.MethodPost, "/api/tasks/bulk", "2", map[string]any{
		"items": []map[string]any{
			{"id": 1, "status": "done"},
			{"id": 2, "priority": "low"},
			{"id": 77, "status": "done"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, 2)
	assert.Equal(t, domain.StatusDone, store.Task(1).Status)
	assert.Equal(t, domain.PriorityLow, store.Task(2).Priority)
}

func TestDependencies(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "Build")
	seedTask(store, "Deploy")

	rec, env := do(t, s, http.MethodPost, "/api/tasks/2/dependencies", "2", map[string]any{"depends_on_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"added": true, "cycle": false}`, string(env.Data))

	rec, _ = do(t, s, http.MethodPost, "/api/tasks/2/dependencies", "2", map[string]any{"depends_on_id": 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/tasks/2/dependencies", "2", map[string]any{"depends_on_id": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, s, http.MethodGet, "/api/tasks/2/dependencies", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[1]`, string(env.Data))

	rec, env = do(t, s, http.MethodGet, "/api/tasks/9/dependencies", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestTaskHistory(t *testing.T) {
	s, _ := newTestServer(t)
	_, _ = do(t, s, http.MethodPost, "/api/tasks", "2", map[string]any{"title": "Audited"})

	rec, env := do(t, s, http.MethodGet, "/api/tasks/1/events", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var events []domain.TaskEvent
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCreate, events[0].Type)
}

func TestUsers(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := do(t, s, http.MethodPost, "/api/users", "", map[string]any{
		"email": "dana@example.com",
		"role":  "manager",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/users", "", map[string]any{"email": "dana@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, s, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 4)
}

func TestAnalytics(t *testing.T) {
	s, store := newTestServer(t)
	due := testNow.Add(-24 * time.Hour)
	assignee := int64(3)
	store.AddTask(domain.Task{
		Title:       "Late",
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: 2,
		AssigneeID:  &assignee,
		DueDate:     &due,
	})

	rec, env := do(t, s, http.MethodGet, "/api/analytics/distribution", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"user_id": 3, "total_tasks": 1, "overdue_tasks": 1}]`, string(env.Data))

	rec, _ = do(t, s, http.MethodGet, "/api/analytics/timeline", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/analytics/timeline?days=120", "2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/analytics/timeline?days=3", "2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreNotInitialized(t *testing.T) {
	s, store := newTestServer(t)
	store.Initialized = false

	rec, _ := do(t, s, http.MethodGet, "/api/tasks", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStoreFailureHidesDetail(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "One")
	store.GetTaskErr = assert.AnError

	rec, env := do(t, s, http.MethodGet, "/api/tasks/1", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", env.Error)
}

func TestTaskResponses_EmptyRelationsAreLists(t *testing.T) {
	// Setup
	s, store := newTestServer(t)
	seedTask(store, "Bare")

	// Execute
	rec, env := do(t, s, http.MethodGet, "/api/tasks/1", "", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Task      map[string]json.RawMessage `json:"task"`
		Ancestors json.RawMessage            `json:"ancestors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.JSONEq(t, `[]`, string(detail.Task["tags"]))
	assert.JSONEq(t, `[]`, string(detail.Task["collaborator_ids"]))
	assert.JSONEq(t, `[]`, string(detail.Ancestors))

	rec, env = do(t, s, http.MethodGet, "/api/tasks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.JSONEq(t, `[]`, string(tasks[0]["tags"]))
	assert.JSONEq(t, `[]`, string(tasks[0]["collaborator_ids"]))
}

func TestBulkUpdate_LegacyPath(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "One")

	rec, env := do(t, s, http.MethodPost, "/api/tasks/bulk-update", "2", map[string]any{
		"items": []map[string]any{{"id": 1, "status": "blocked"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusBlocked, store.Task(1).Status)
}

func TestAddDependency_PathForm(t *testing.T) {
	s, store := newTestServer(t)
	seedTask(store, "Build")
	seedTask(store, "Deploy")

	rec, env := do(t, s, http.MethodPost, "/api/tasks/2/dependencies/1", "2", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"added": true, "cycle": false}`, string(env.Data))

	rec, _ = do(t, s, http.MethodPost, "/api/tasks/2/dependencies/1", "2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.Dependencies(), 1)

	rec, _ = do(t, s, http.MethodPost, "/api/tasks/2/dependencies/2", "2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/tasks/2/dependencies/x", "2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
