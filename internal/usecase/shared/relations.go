package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskhub/internal/domain"
)

// SyncTags replaces the task's tag set with names. A nil names leaves the
// tags alone and yields no change. Otherwise unknown names are created, the
// links are reconciled, and exactly one "tags" change is returned whose new
// value is the requested names joined with commas.
func SyncTags(ctx context.Context, tx domain.Tx, task *domain.Task, names *[]string) (*domain.Change, error) {
	if names == nil {
		return nil, nil
	}
	desired := domain.Dedupe(*names)

	wanted := make([]domain.Tag, 0, len(desired))
	for _, name := range desired {
		tag, err := tx.FindOrCreateTag(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		wanted = append(wanted, tag)
	}

	added, removed := domain.ReconcileSet(tagIDs(task.Tags), tagIDs(wanted))
	if len(removed) > 0 {
		if err := tx.UnlinkTags(ctx, task.ID, removed); err != nil {
			return nil, fmt.Errorf("unlink tags: %w", err)
		}
	}
	if len(added) > 0 {
		if err := tx.LinkTags(ctx, task.ID, added); err != nil {
			return nil, fmt.Errorf("link tags: %w", err)
		}
	}
	task.Tags = wanted

	joined := strings.Join(*names, ",")
	return &domain.Change{Field: domain.FieldTags, New: &joined}, nil
}

// SyncCollaborators replaces the task's collaborator set with ids. A nil ids
// leaves collaborators alone. IDs that do not name a user are dropped from
// the stored set but kept in the recorded change.
func SyncCollaborators(ctx context.Context, tx domain.Tx, task *domain.Task, ids *[]int64) (*domain.Change, error) {
	if ids == nil {
		return nil, nil
	}
	known, err := tx.ExistingUserIDs(ctx, domain.Dedupe(*ids))
	if err != nil {
		return nil, fmt.Errorf("resolve collaborators: %w", err)
	}

	added, removed := domain.ReconcileSet(task.CollaboratorIDs, known)
	if len(removed) > 0 {
		if err := tx.UnlinkCollaborators(ctx, task.ID, removed); err != nil {
			return nil, fmt.Errorf("unlink collaborators: %w", err)
		}
	}
	if len(added) > 0 {
		if err := tx.LinkCollaborators(ctx, task.ID, added); err != nil {
			return nil, fmt.Errorf("link collaborators: %w", err)
		}
	}
	task.CollaboratorIDs = known

	joined := domain.JoinIDs(*ids)
	return &domain.Change{Field: domain.FieldCollaborators, New: &joined}, nil
}

func tagIDs(tags []domain.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
