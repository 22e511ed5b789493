package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	t.created_at, t.updated_at, t.created_by_id, t.assignee_id, t.parent_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                 domain.Task
		description, dueDate sql.NullString
		createdAt, updatedAt string
		assigneeID, parentID sql.NullInt64
	)
	err := row.Scan(&task.ID, &task.Title, &description, &task.Status, &task.Priority, &dueDate,
		&createdAt, &updatedAt, &task.CreatedByID, &assigneeID, &parentID)
	if err != nil {
		return nil, err
	}

	task.Description = stringFromNull(description)
	task.AssigneeID = intFromNull(assigneeID)
	task.ParentID = intFromNull(parentID)
	if task.DueDate, err = timeFromNull(dueDate); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask retrieves a task by ID with its tags and collaborators.
func (t *tx) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks t WHERE t.id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	if err := t.loadRelations(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks retrieves tasks matching the filter, ordered by ID.
func (t *tx) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks t"
	var conds []string
	var args []any

	if len(filter.Statuses) > 0 {
		conds = append(conds, "t.status IN ("+placeholders(len(filter.Statuses))+")")
		for _, s := range filter.Statuses {
			args = append(args, string(s))
		}
	}
	if len(filter.Priorities) > 0 {
		conds = append(conds, "t.priority IN ("+placeholders(len(filter.Priorities))+")")
		for _, p := range filter.Priorities {
			args = append(args, string(p))
		}
	}
	if len(filter.AssigneeIDs) > 0 {
		conds = append(conds, "t.assignee_id IN ("+placeholders(len(filter.AssigneeIDs))+")")
		for _, id := range filter.AssigneeIDs {
			args = append(args, id)
		}
	}
	if filter.CreatedFrom != nil {
		conds = append(conds, "t.created_at >= ?")
		args = append(args, formatTime(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		conds = append(conds, "t.created_at <= ?")
		args = append(args, formatTime(*filter.CreatedTo))
	}
	if filter.DueFrom != nil {
		conds = append(conds, "t.due_date >= ?")
		args = append(args, formatTime(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		conds = append(conds, "t.due_date <= ?")
		args = append(args, formatTime(*filter.DueTo))
	}
	if len(filter.TagNames) > 0 {
		conds = append(conds, `t.id IN (
			SELECT tt.task_id FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
			WHERE g.name IN (`+placeholders(len(filter.TagNames))+`))`)
		for _, name := range filter.TagNames {
			args = append(args, name)
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.id"

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Load relations for each task
	for _, task := range tasks {
		if err := t.loadRelations(ctx, task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// InsertTask stores a new task and sets its ID.
func (t *tx) InsertTask(ctx context.Context, task *domain.Task) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date,
			created_at, updated_at, created_by_id, assignee_id, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.Title, nullString(task.Description), string(task.Status), string(task.Priority),
		nullTime(task.DueDate), formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
		task.CreatedByID, nullInt(task.AssigneeID), nullInt(task.ParentID))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	task.ID = id
	return nil
}

// UpdateTask writes the mutable scalar fields. created_by_id is never written.
func (t *tx) UpdateTask(ctx context.Context, task *domain.Task) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
			updated_at = ?, assignee_id = ?, parent_id = ?
		WHERE id = ?
	`, task.Title, nullString(task.Description), string(task.Status), string(task.Priority),
		nullTime(task.DueDate), formatTime(task.UpdatedAt), nullInt(task.AssigneeID),
		nullInt(task.ParentID), task.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task. Tags, collaborators, dependency edges and
// events go with it through ON DELETE CASCADE; children become root tasks.
func (t *tx) DeleteTask(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// ParentIndex maps every child task ID to its parent ID.
func (t *tx) ParentIndex(ctx context.Context) (map[int64]int64, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, parent_id FROM tasks WHERE parent_id IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("load parent index: %w", err)
	}
	defer rows.Close()

	index := make(map[int64]int64)
	for rows.Next() {
		var id, parent int64
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		index[id] = parent
	}
	return index, rows.Err()
}

// AssigneeLoads counts assigned tasks per user.
func (t *tx) AssigneeLoads(ctx context.Context, now time.Time) ([]domain.AssigneeLoad, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT assignee_id,
		       COUNT(id),
		       SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END)
		FROM tasks
		WHERE assignee_id IS NOT NULL
		GROUP BY assignee_id
		ORDER BY assignee_id
	`, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("task distribution: %w", err)
	}
	defer rows.Close()

	var loads []domain.AssigneeLoad
	for rows.Next() {
		var l domain.AssigneeLoad
		if err := rows.Scan(&l.UserID, &l.TotalTasks, &l.OverdueTasks); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

// loadRelations fills in tags and collaborator IDs, in link order.
func (t *tx) loadRelations(ctx context.Context, task *domain.Task) error {
	tagRows, err := t.tx.QueryContext(ctx, `
		SELECT g.id, g.name FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id = ? ORDER BY tt.rowid
	`, task.ID)
	if err != nil {
		return fmt.Errorf("load tags for task %d: %w", task.ID, err)
	}
	task.Tags = nil
	for tagRows.Next() {
		var tag domain.Tag
		if err := tagRows.Scan(&tag.ID, &tag.Name); err != nil {
			tagRows.Close()
			return err
		}
		task.Tags = append(task.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		tagRows.Close()
		return err
	}
	tagRows.Close()

	userRows, err := t.tx.QueryContext(ctx,
		"SELECT user_id FROM task_collaborators WHERE task_id = ? ORDER BY rowid", task.ID)
	if err != nil {
		return fmt.Errorf("load collaborators for task %d: %w", task.ID, err)
	}
	defer userRows.Close()
	task.CollaboratorIDs = nil
	for userRows.Next() {
		var id int64
		if err := userRows.Scan(&id); err != nil {
			return err
		}
		task.CollaboratorIDs = append(task.CollaboratorIDs, id)
	}
	return userRows.Err()
}
