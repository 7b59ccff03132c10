package accounts

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Notifier enqueues post-registration notifications. Delivery is best effort
// and never blocks registration.
type Notifier interface {
	WelcomeRegistered(ctx context.Context, email string) error
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// Service wraps account lifecycle business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Register creates a new active account with the default role.
//
// Password checks run before any store access. The email pre-check is
// advisory; concurrent registrations with the same key race past it, so the
// unique violation at insert time is the authoritative duplicate signal.
func (s *Service) Register(ctx context.Context, input RegisterInput) (int64, error) {
	if err := validateSecret(input.Password1, input.Password2); err != nil {
		return 0, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, Account{
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		RoleID:       DefaultRoleID,
	})
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		if err := s.notifier.WelcomeRegistered(ctx, input.Email); err != nil {
			s.logger.Warn("enqueue welcome notification", slog.Any("error", err))
		}
	}
	return id, nil
}

// Authenticate validates email/password credentials. Unknown email, wrong
// password and deactivated accounts all return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// Profile returns the account for a resolved principal id.
func (s *Service) Profile(ctx context.Context, id int64) (*Account, error) {
	acct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acct.IsActive {
		return nil, ErrInactive
	}
	return acct, nil
}

// UpdateProfile replaces every mutable field of the caller's own account.
// Callers resend all fields; there is no partial merge.
func (s *Service) UpdateProfile(ctx context.Context, id int64, input RegisterInput) error {
	if err := validateSecret(input.Password1, input.Password2); err != nil {
		return err
	}
	acct, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acct.Email = input.Email
	acct.PasswordHash = string(hash)
	acct.FirstName = input.FirstName
	acct.LastName = input.LastName
	return s.repo.Update(ctx, *acct)
}

// Deactivate soft-deletes the caller's own account. Self-service: no rule
// lookup is involved, a principal may always deactivate itself.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func validateSecret(password1, password2 string) error {
	if len([]byte(password1)) > MaxSecretBytes {
		return ErrSecretTooLong
	}
	if password1 != password2 {
		return ErrPasswordMismatch
	}
	return nil
}
