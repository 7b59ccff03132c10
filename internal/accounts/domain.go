package accounts

import (
	"errors"
	"time"
)

// DefaultRoleID is assigned to newly registered accounts. It matches the
// "standard" role inserted by the seed.
const DefaultRoleID int64 = 2

// MaxSecretBytes bounds the UTF-8 encoded password length before hashing.
const MaxSecretBytes = 72

// Account represents a registered principal.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("accounts: not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("accounts: email already registered")
	// ErrPasswordMismatch indicates the two password fields differ.
	ErrPasswordMismatch = errors.New("accounts: passwords do not match")
	// ErrSecretTooLong indicates the password exceeds MaxSecretBytes.
	ErrSecretTooLong = errors.New("accounts: password exceeds 72 bytes")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
	// ErrAlreadyInactive indicates a repeated deactivation.
	ErrAlreadyInactive = errors.New("accounts: already deactivated")
	// ErrInactive indicates the account has been deactivated.
	ErrInactive = errors.New("accounts: account inactive")
)
