package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase"
)

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	Description     *string    `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	AssigneeID      *int64     `json:"assignee_id"`
	ParentID        *int64     `json:"parent_id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	TagNames        []string   `json:"tag_names"`
	CollaboratorIDs []int64    `json:"collaborator_ids"`
}

// updateTaskRequest is the body of PATCH /api/tasks/:id.
// Absent fields carry no intent.
type updateTaskRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status"`
	Priority        *string    `json:"priority"`
	DueDate         *time.Time `json:"due_date"`
	AssigneeID      *int64     `json:"assignee_id"`
	ParentID        *int64     `json:"parent_id"`
	TagNames        *[]string  `json:"tag_names"`
	CollaboratorIDs *[]int64   `json:"collaborator_ids"`
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	p := domain.TaskPatch{
		Title:           r.Title,
		Description:     r.Description,
		DueDate:         r.DueDate,
		AssigneeID:      r.AssigneeID,
		ParentID:        r.ParentID,
		TagNames:        r.TagNames,
		CollaboratorIDs: r.CollaboratorIDs,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	if r.Priority != nil {
		pr := domain.Priority(*r.Priority)
		p.Priority = &pr
	}
	return p
}

type bulkRequest struct {
	Items []usecase.BulkItem `json:"items"`
}

type dependencyRequest struct {
	DependsOnID int64 `json:"depends_on_id"`
}

type registerUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// actor resolves the acting user from the X-Actor-ID header. On failure it
// writes a 401 and returns false.
func (s *Server) actor(c *gin.Context) (domain.Actor, bool) {
	out, err := s.c.ResolveActorUseCase().Execute(c.Request.Context(), usecase.ResolveActorInput{
		Ref: c.GetHeader(HeaderActor),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActor) || errors.Is(err, domain.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"error":      fmt.Sprintf("%s header: %v", HeaderActor, err),
				"request_id": c.GetString(HeaderRequestID),
			})
			return domain.Actor{}, false
		}
		s.fail(c, err)
		return domain.Actor{}, false
	}
	return out.Actor, true
}

func taskIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, errBadTaskID)
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateTask(c *gin.Context) {
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.c.CreateTaskUseCase().Execute(c.Request.Context(), usecase.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Status:          domain.Status(req.Status),
		Priority:        domain.Priority(req.Priority),
		DueDate:         req.DueDate,
		AssigneeID:      req.AssigneeID,
		ParentID:        req.ParentID,
		TagNames:        req.TagNames,
		CollaboratorIDs: req.CollaboratorIDs,
		Actor:           who,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, taskView(out.Task))
}

func (s *Server) handleListTasks(c *gin.Context) {
	in := usecase.ListTasksInput{
		Statuses:   c.QueryArray("status"),
		Priorities: c.QueryArray("priority"),
		TagNames:   c.QueryArray("tag"),
	}
	for _, raw := range c.QueryArray("assignee_id") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid assignee_id %q", raw))
			return
		}
		in.AssigneeIDs = append(in.AssigneeIDs, id)
	}
	for _, f := range []struct {
		dst **time.Time
		key string
	}{
		{&in.CreatedFrom, "created_from"},
		{&in.CreatedTo, "created_to"},
		{&in.DueFrom, "due_from"},
		{&in.DueTo, "due_to"},
	} {
		raw := c.Query(f.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid %s %q: want RFC 3339", f.key, raw))
			return
		}
		*f.dst = &t
	}

	out, err := s.c.ListTasksUseCase().Execute(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, taskViews(out.Tasks))
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	out, err := s.c.ShowTaskUseCase().Execute(c.Request.Context(), usecase.ShowTaskInput{
		TaskID:       id,
		WithAncestor: c.Query("ancestors") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"task":       taskView(out.Task),
		"ancestors":  taskViews(out.Ancestors),
		"depends_on": out.DependsOn,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.c.UpdateTaskUseCase().Execute(c.Request.Context(), usecase.UpdateTaskInput{
		TaskID: id,
		Patch:  req.patch(),
		Actor:  who,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"task":    taskView(out.Task),
		"changed": len(out.Changes),
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	if _, err := s.c.DeleteTaskUseCase().Execute(c.Request.Context(), usecase.DeleteTaskInput{
		TaskID: id,
		Actor:  who,
	}); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleBulkUpdate(c *gin.Context) {
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.c.BulkUpdateUseCase().Execute(c.Request.Context(), usecase.BulkUpdateInput{
		Items: req.Items,
		Actor: who,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, taskViews(out.Tasks))
}

func (s *Server) handleAddDependency(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	var req dependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.addDependency(c, who, id, req.DependsOnID)
}

// handleAddDependencyPath takes the dependency from the path:
// POST /api/tasks/:id/dependencies/:depends_on_id.
func (s *Server) handleAddDependencyPath(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	dependsOnID, err := strconv.ParseInt(c.Param("depends_on_id"), 10, 64)
	if err != nil || dependsOnID <= 0 {
		badRequest(c, errBadTaskID)
		return
	}
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	s.addDependency(c, who, id, dependsOnID)
}

func (s *Server) addDependency(c *gin.Context, who domain.Actor, taskID, dependsOnID int64) {
	out, err := s.c.AddDependencyUseCase().Execute(c.Request.Context(), usecase.AddDependencyInput{
		TaskID:      taskID,
		DependsOnID: dependsOnID,
		Actor:       who,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if out.Added {
		status = http.StatusCreated
	}
	ok(c, status, gin.H{
		"added": out.Added,
		"cycle": out.Cycle,
	})
}

func (s *Server) handleListDependencies(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	out, err := s.c.ListDependenciesUseCase().Execute(c.Request.Context(), usecase.ListDependenciesInput{
		TaskID:     id,
		Transitive: c.Query("transitive") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	deps := out.DependsOn
	if deps == nil {
		deps = []int64{}
	}
	ok(c, http.StatusOK, deps)
}

func (s *Server) handleTaskHistory(c *gin.Context) {
	id, valid := taskIDParam(c)
	if !valid {
		return
	}
	out, err := s.c.TaskHistoryUseCase().Execute(c.Request.Context(), usecase.TaskHistoryInput{TaskID: id})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, out.Events)
}

func (s *Server) handleListUsers(c *gin.Context) {
	out, err := s.c.ListUsersUseCase().Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, out.Users)
}

func (s *Server) handleRegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := s.c.RegisterUserUseCase().Execute(c.Request.Context(), usecase.RegisterUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, out.User)
}

func (s *Server) handleDistribution(c *gin.Context) {
	out, err := s.c.TaskDistributionUseCase().Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, out.Loads)
}

func (s *Server) handleTimeline(c *gin.Context) {
	who, okActor := s.actor(c)
	if !okActor {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid days %q", raw))
			return
		}
		days = n
	}
	out, err := s.c.TimelineUseCase().Execute(c.Request.Context(), usecase.TimelineInput{
		Actor: who,
		Days:  days,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"since":  out.Since,
		"events": out.Events,
	})
}

// taskView returns task with empty relation lists instead of nil, so they
// encode as [] rather than null.
func taskView(task *domain.Task) *domain.Task {
	if task == nil {
		return nil
	}
	v := *task
	if v.Tags == nil {
		v.Tags = []domain.Tag{}
	}
	if v.CollaboratorIDs == nil {
		v.CollaboratorIDs = []int64{}
	}
	return &v
}

func taskViews(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, len(tasks))
	for i, task := range tasks {
		out[i] = taskView(task)
	}
	return out
}
