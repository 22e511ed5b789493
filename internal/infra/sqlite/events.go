package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
)

const eventColumns = "e.id, e.task_id, e.user_id, e.event_type, e.field, e.old_value, e.new_value, e.created_at"

func scanEvent(row rowScanner) (domain.TaskEvent, error) {
	var (
		e                         domain.TaskEvent
		userID                    sql.NullInt64
		field, oldValue, newValue sql.NullString
		createdAt                 string
	)
	if err := row.Scan(&e.ID, &e.TaskID, &userID, &e.Type, &field, &oldValue, &newValue, &createdAt); err != nil {
		return domain.TaskEvent{}, err
	}
	e.UserID = intFromNull(userID)
	e.Field = stringFromNull(field)
	e.OldValue = stringFromNull(oldValue)
	e.NewValue = stringFromNull(newValue)
	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.TaskEvent{}, err
	}
	return e, nil
}

// InsertEvent appends an event and sets its ID.
func (t *tx) InsertEvent(ctx context.Context, e *domain.TaskEvent) error {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO task_events (task_id, user_id, event_type, field, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.TaskID, nullInt(e.UserID), string(e.Type), nullString(e.Field),
		nullString(e.OldValue), nullString(e.NewValue), formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns a task's events ordered by created_at, then ID.
func (t *tx) ListEvents(ctx context.Context, taskID int64) ([]domain.TaskEvent, error) {
	return t.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM task_events e
		WHERE e.task_id = ?
		ORDER BY e.created_at, e.id
	`, taskID)
}

// TimelineEvents returns recent events on tasks the user created or is assigned to.
func (t *tx) TimelineEvents(ctx context.Context, userID int64, since time.Time) ([]domain.TaskEvent, error) {
	return t.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM task_events e
		JOIN tasks t ON t.id = e.task_id
		WHERE e.created_at >= ? AND (t.assignee_id = ? OR t.created_by_id = ?)
		ORDER BY e.created_at DESC, e.id DESC
	`, formatTime(since), userID, userID)
}

func (t *tx) queryEvents(ctx context.Context, query string, args ...any) ([]domain.TaskEvent, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.TaskEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
