package resources

import (
	"errors"
	"time"
)

// Resource is a protected noun ("business element") access rules refer to.
type Resource struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("resources: not found")
	// ErrNameTaken indicates a resource with this name already exists.
	ErrNameTaken = errors.New("resources: name already exists")
	// ErrInUse indicates access rules still reference the resource.
	ErrInUse = errors.New("resources: still referenced")
	// ErrNameRequired indicates an empty resource name.
	ErrNameRequired = errors.New("resources: name required")
)
