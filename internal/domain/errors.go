package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so transports
// can classify failures with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// Domain errors.
var (
	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrParentNotFound   = fmt.Errorf("parent task %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrNotAllowed       = fmt.Errorf("%w: not allowed to modify this task", ErrForbidden)
	ErrEmptyTitle       = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority  = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrSelfDependency   = fmt.Errorf("%w: task cannot depend on itself", ErrValidation)
	ErrNoFieldsToUpdate = fmt.Errorf("%w: no fields to update", ErrValidation)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidWindow    = fmt.Errorf("%w: days must be between 1 and 90", ErrValidation)
	ErrInvalidDraft     = fmt.Errorf("%w: invalid task file", ErrValidation)
	ErrInvalidParentRef = fmt.Errorf("%w: invalid parent reference", ErrValidation)
	ErrNoActor          = fmt.Errorf("%w: no acting user (pass --as or set [actor] default)", ErrValidation)
	ErrNotInitialized   = errors.New("taskhub not initialized (run 'taskhub init' first)")
	ErrConfigExists     = errors.New("config file already exists")
)

// Kind identifies the class of a failure.
type Kind int

// Failure kinds. KindStorage covers everything that is not a domain error.
const (
	KindNone Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindStorage
)

// ErrorKind classifies err.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindStorage
	}
}
