package rules

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RoleChecker verifies that a referenced role exists.
type RoleChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ResourceChecker verifies that a referenced resource exists.
type ResourceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service handles access-rule business logic.
type Service struct {
	repo      RepositoryPort
	roles     RoleChecker
	resources ResourceChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, roles RoleChecker, resources ResourceChecker) *Service {
	return &Service{repo: repo, roles: roles, resources: resources}
}

// List returns all access rules.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.repo.List(ctx)
}

// Get fetches a rule by id.
func (s *Service) Get(ctx context.Context, id int64) (Rule, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the referenced role and resource, then inserts the rule.
func (s *Service) Create(ctx context.Context, rule Rule) (Rule, error) {
	if err := s.checkReferences(ctx, rule); err != nil {
		return Rule{}, err
	}
	return s.repo.Create(ctx, rule)
}

// Update validates references and fully replaces the rule's fields. Callers
// resend every field, including the pair and all four permission bits.
func (s *Service) Update(ctx context.Context, rule Rule) (Rule, error) {
	if _, err := s.repo.Get(ctx, rule.ID); err != nil {
		return Rule{}, err
	}
	if err := s.checkReferences(ctx, rule); err != nil {
		return Rule{}, err
	}
	return s.repo.Update(ctx, rule)
}

// Delete removes a rule by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkReferences(ctx context.Context, rule Rule) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.roles.Exists(ctx, rule.RoleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoleMissing
		}
		return nil
	})
	g.Go(func() error {
		ok, err := s.resources.Exists(ctx, rule.ResourceID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrResourceMissing
		}
		return nil
	})
	return g.Wait()
}
