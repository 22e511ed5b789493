package sqlite

import (
	"context"
	"fmt"

	"github.com/runoshun/taskhub/internal/domain"
)

// DependencyExists reports whether the edge is stored.
func (t *tx) DependencyExists(ctx context.Context, dep domain.Dependency) (bool, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM task_dependencies WHERE task_id = ? AND depends_on_id = ?",
		dep.TaskID, dep.DependsOnID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check dependency: %w", err)
	}
	return n > 0, nil
}

// InsertDependency stores a new edge.
func (t *tx) InsertDependency(ctx context.Context, dep domain.Dependency) error {
	if _, err := t.tx.ExecContext(ctx,
		"INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)",
		dep.TaskID, dep.DependsOnID); err != nil {
		return fmt.Errorf("insert dependency: %w", err)
	}
	return nil
}

// ListDependencies returns the IDs taskID directly depends on, ascending.
func (t *tx) ListDependencies(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT depends_on_id FROM task_dependencies WHERE task_id = ? ORDER BY depends_on_id", taskID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AllDependencies returns every stored edge.
func (t *tx) AllDependencies(ctx context.Context) ([]domain.Dependency, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT task_id, depends_on_id FROM task_dependencies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var deps []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnID); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}
