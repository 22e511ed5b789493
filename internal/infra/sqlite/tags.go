package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

// FindOrCreateTag returns the tag with exactly this name, creating it if needed.
// Matching is case-sensitive.
func (t *tx) FindOrCreateTag(ctx context.Context, name string) (domain.Tag, error) {
	tag := domain.Tag{Name: name}
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, fmt.Errorf("find tag %q: %w", name, err)
	}

	result, err := t.tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("create tag %q: %w", name, err)
	}
	if tag.ID, err = result.LastInsertId(); err != nil {
		return domain.Tag{}, fmt.Errorf("create tag %q: %w", name, err)
	}
	return tag, nil
}

// LinkTags attaches tags to a task.
func (t *tx) LinkTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		if _, err := t.tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)", taskID, id); err != nil {
			return fmt.Errorf("link tag %d to task %d: %w", id, taskID, err)
		}
	}
	return nil
}

// UnlinkTags detaches tags from a task.
func (t *tx) UnlinkTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		if _, err := t.tx.ExecContext(ctx,
			"DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, id); err != nil {
			return fmt.Errorf("unlink tag %d from task %d: %w", id, taskID, err)
		}
	}
	return nil
}
