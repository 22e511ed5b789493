package domain

import (
	"strconv"
	"strings"
	"time"
)

// Audited field names. These are the values stored in TaskEvent.Field.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldStatus        = "status"
	FieldPriority      = "priority"
	FieldDueDate       = "due_date"
	FieldAssignee      = "assignee_id"
	FieldParent        = "parent_id"
	FieldTags          = "tags"
	FieldCollaborators = "collaborators"
	FieldDependsOn     = "depends_on"
)

// TaskPatch is a partial update. A nil field means "no intent"; a non-nil
// field is applied only when it differs from the current value.
type TaskPatch struct {
	Title           *string
	Description     *string
	Status          *Status
	Priority        *Priority
	DueDate         *time.Time
	AssigneeID      *int64
	ParentID        *int64
	TagNames        *[]string
	CollaboratorIDs *[]int64
}

// IsEmpty reports whether the patch carries no intent at all.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.AssigneeID == nil &&
		p.ParentID == nil && p.TagNames == nil && p.CollaboratorIDs == nil
}

// Validate checks enum membership and required values without touching any task.
func (p TaskPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil {
		if _, err := ParseStatus(string(*p.Status)); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if _, err := ParsePriority(string(*p.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// Change records one field-level (or relation-level) modification.
// Old is nil when the previous value was empty or is not tracked.
type Change struct {
	Old   *string
	New   *string
	Field string
}

// ApplyFields applies the scalar fields of patch to task and returns the
// changes in declaration order. Validation runs first, so a rejected patch
// leaves task untouched. Relations (tags, collaborators) are ignored here.
func ApplyFields(task *Task, patch TaskPatch) ([]Change, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var changes []Change
	record := func(field string, old, new *string) {
		changes = append(changes, Change{Field: field, Old: old, New: new})
	}

	if patch.Title != nil && *patch.Title != task.Title {
		old := task.Title
		task.Title = *patch.Title
		record(FieldTitle, &old, stringPtr(task.Title))
	}
	if patch.Description != nil && !equalString(task.Description, patch.Description) {
		old := task.Description
		task.Description = stringPtr(*patch.Description)
		record(FieldDescription, old, stringPtr(*patch.Description))
	}
	if patch.Status != nil && *patch.Status != task.Status {
		old := string(task.Status)
		task.Status = *patch.Status
		record(FieldStatus, &old, stringPtr(string(task.Status)))
	}
	if patch.Priority != nil && *patch.Priority != task.Priority {
		old := string(task.Priority)
		task.Priority = *patch.Priority
		record(FieldPriority, &old, stringPtr(string(task.Priority)))
	}
	if patch.DueDate != nil && (task.DueDate == nil || !task.DueDate.Equal(*patch.DueDate)) {
		old := FormatTime(task.DueDate)
		due := *patch.DueDate
		task.DueDate = &due
		record(FieldDueDate, old, FormatTime(task.DueDate))
	}
	if patch.AssigneeID != nil && !equalID(task.AssigneeID, patch.AssigneeID) {
		old := FormatID(task.AssigneeID)
		id := *patch.AssigneeID
		task.AssigneeID = &id
		record(FieldAssignee, old, FormatID(task.AssigneeID))
	}
	if patch.ParentID != nil && !equalID(task.ParentID, patch.ParentID) {
		old := FormatID(task.ParentID)
		id := *patch.ParentID
		task.ParentID = &id
		record(FieldParent, old, FormatID(task.ParentID))
	}

	return changes, nil
}

// FieldValues returns the audited scalar fields of task in their ledger form.
func FieldValues(task *Task) map[string]*string {
	return map[string]*string{
		FieldTitle:       stringPtr(task.Title),
		FieldDescription: task.Description,
		FieldStatus:      stringPtr(string(task.Status)),
		FieldPriority:    stringPtr(string(task.Priority)),
		FieldDueDate:     FormatTime(task.DueDate),
		FieldAssignee:    FormatID(task.AssigneeID),
		FieldParent:      FormatID(task.ParentID),
	}
}

// ReplayFields folds update events over a starting snapshot (as returned by
// FieldValues at creation time). Events must be in ledger order.
func ReplayFields(start map[string]*string, events []TaskEvent) map[string]*string {
	out := make(map[string]*string, len(start))
	for k, v := range start {
		out[k] = v
	}
	for _, e := range events {
		if e.Type != EventUpdate || e.Field == nil {
			continue
		}
		if _, scalar := start[*e.Field]; !scalar {
			continue
		}
		out[*e.Field] = e.NewValue
	}
	return out
}

// FormatTime renders a timestamp for the audit ledger.
func FormatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return stringPtr(t.UTC().Format(time.RFC3339))
}

// FormatID renders an optional reference for the audit ledger.
func FormatID(id *int64) *string {
	if id == nil {
		return nil
	}
	return stringPtr(strconv.FormatInt(*id, 10))
}

// JoinIDs renders a list of ids as a comma-separated string.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func stringPtr(s string) *string {
	return &s
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
