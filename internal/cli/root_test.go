package cli

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testEnv is a container over an in-memory store with three users:
// 1 admin, 2 member (creator), 3 member (bystander).
type testEnv struct {
	c      *app.Container
	store  *testutil.MemStore
	logger *testutil.RecordingLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.NewMemStore()
	store.AddUser("admin@example.com", domain.RoleAdmin)
	store.AddUser("creator@example.com", domain.RoleMember)
	store.AddUser("bystander@example.com", domain.RoleMember)

	logger := &testutil.RecordingLogger{}
	c := app.NewWithDeps(
		app.Config{},
		store,
		&testutil.MockClock{NowTime: testNow},
		logger,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &testEnv{c: c, store: store, logger: logger}
}

// seedTask stores a task created by user 2.
func (e *testEnv) seedTask(title string) *domain.Task {
	return e.store.AddTask(domain.Task{
		Title:       title,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedByID: 2,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	})
}

// run executes the root command with args and returns stdout and stderr.
func (e *testEnv) run(args ...string) (string, string, error) {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) (string, string, error) {
	cmd := NewRootCommand(e.c, "test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_ListsGroups(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("--help")

	assert.NoError(t, err)
	assert.Contains(t, out, "Setup Commands:")
	assert.Contains(t, out, "Task Management:")
	assert.Contains(t, out, "Reports and Serving:")
	assert.Contains(t, out, "--as")
}

func TestRootCommand_PrintsConfigWarnings(t *testing.T) {
	env := newTestEnv(t)
	env.c.Config.App.Warnings = []string{"config.toml: unknown section: workers"}

	_, errOut, err := env.run("user", "list")

	assert.NoError(t, err)
	assert.Contains(t, errOut, "Warning: config.toml: unknown section: workers")
}

func TestActorResolution(t *testing.T) {
	t.Run("missing actor", func(t *testing.T) {
		env := newTestEnv(t)

		_, _, err := env.run("new", "--title", "Orphan")

		assert.ErrorIs(t, err, domain.ErrNoActor)
		assert.Equal(t, 0, env.store.TaskCount())
	})

	t.Run("default actor from config", func(t *testing.T) {
		env := newTestEnv(t)
		env.c.Config.App.Actor.Default = "creator@example.com"

		_, _, err := env.run("new", "--title", "Configured")

		assert.NoError(t, err)
		assert.Equal(t, int64(2), env.store.Task(1).CreatedByID)
	})

	t.Run("flag wins over config", func(t *testing.T) {
		env := newTestEnv(t)
		env.c.Config.App.Actor.Default = "2"

		_, _, err := env.run("new", "--title", "Flagged", "--as", "admin@example.com")

		assert.NoError(t, err)
		assert.Equal(t, int64(1), env.store.Task(1).CreatedByID)
	})

	t.Run("unknown actor", func(t *testing.T) {
		env := newTestEnv(t)

		_, _, err := env.run("new", "--title", "Ghost", "--as", "42")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12", want: 12},
		{in: "#7", want: 7},
		{in: "0", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTaskID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-10")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)

	ts, err := parseDate("2026-03-10T09:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 9, ts.Hour())

	_, err = parseDate("next week")
	assert.Error(t, err)
}
