package domain

// Operation is a task mutation subject to access control.
type Operation string

// Guarded operations.
const (
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Authorize decides whether actor may perform op on task.
//
// Admins and managers may do anything. The creator may update and delete.
// The assignee may update but not delete.
func Authorize(actor Actor, task *Task, op Operation) bool {
	if task == nil {
		return false
	}
	if actor.Role.IsPrivileged() {
		return true
	}
	if actor.ID == task.CreatedByID {
		return true
	}
	switch op {
	case OpUpdate:
		return task.AssigneeID != nil && *task.AssigneeID == actor.ID
	default:
		return false
	}
}
