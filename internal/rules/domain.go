package rules

import (
	"errors"
	"time"
)

// Rule is the (role, resource) policy row the engine evaluates. A pair may
// have at most one rule; the storage layer enforces it with a unique
// constraint.
type Rule struct {
	ID         int64
	RoleID     int64
	ResourceID int64
	Read       bool
	Create     bool
	Update     bool
	Delete     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrNotFound indicates the rule does not exist.
	ErrNotFound = errors.New("rules: not found")
	// ErrDuplicatePair indicates a rule for this (role, resource) pair exists.
	ErrDuplicatePair = errors.New("rules: rule for role/resource pair already exists")
	// ErrRoleMissing indicates the referenced role does not exist.
	ErrRoleMissing = errors.New("rules: referenced role does not exist")
	// ErrResourceMissing indicates the referenced resource does not exist.
	ErrResourceMissing = errors.New("rules: referenced resource does not exist")
)
