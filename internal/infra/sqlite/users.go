package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

const userColumns = "id, email, full_name, role, is_active, created_at"

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (t *tx) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email. Returns nil if not found.
func (t *tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	return u, nil
}

// InsertUser stores a new user and sets its ID.
func (t *tx) InsertUser(ctx context.Context, u *domain.User) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO users (email, full_name, role, is_active, created_at) VALUES (?, ?, ?, ?, ?)
	`, u.Email, u.FullName, string(u.Role), u.Active, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ListUsers returns all users ordered by ID.
func (t *tx) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ExistingUserIDs returns the subset of ids that refer to users, in input order.
func (t *tx) ExistingUserIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id FROM users WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []int64
	for _, id := range ids {
		if found[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// LinkCollaborators attaches users to a task.
func (t *tx) LinkCollaborators(ctx context.Context, taskID int64, userIDs []int64) error {
	for _, id := range userIDs {
		if _, err := t.tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO task_collaborators (task_id, user_id) VALUES (?, ?)", taskID, id); err != nil {
			return fmt.Errorf("link collaborator %d to task %d: %w", id, taskID, err)
		}
	}
	return nil
}

// UnlinkCollaborators detaches users from a task.
func (t *tx) UnlinkCollaborators(ctx context.Context, taskID int64, userIDs []int64) error {
	for _, id := range userIDs {
		if _, err := t.tx.ExecContext(ctx,
			"DELETE FROM task_collaborators WHERE task_id = ? AND user_id = ?", taskID, id); err != nil {
			return fmt.Errorf("unlink collaborator %d from task %d: %w", id, taskID, err)
		}
	}
	return nil
}
