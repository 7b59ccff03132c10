package roles

import (
	"errors"
	"time"
)

// Role groups principals sharing the same permission set.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrNotFound indicates the role does not exist.
	ErrNotFound = errors.New("roles: not found")
	// ErrNameTaken indicates a role with this name already exists.
	ErrNameTaken = errors.New("roles: name already exists")
	// ErrInUse indicates accounts or rules still reference the role.
	ErrInUse = errors.New("roles: still referenced")
	// ErrNameRequired indicates an empty role name.
	ErrNameRequired = errors.New("roles: name required")
)
