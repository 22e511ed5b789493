package domain

import (
	"fmt"
	"time"
)

// Role determines what a user may do beyond their own tasks.
type Role string

// Valid roles.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// IsValid returns true if the role is a known valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	default:
		return false
	}
}

// IsPrivileged reports whether the role may act on any task.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// ParseRole converts a raw value into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return r, nil
}

// User is a person who can create, own, or collaborate on tasks.
// Fields are ordered to minimize memory padding.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      Role      `json:"role"`
	ID        int64     `json:"id"`
	Active    bool      `json:"active"`
}

// Actor returns the identity this user acts as.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	Role Role
	ID   int64
}
