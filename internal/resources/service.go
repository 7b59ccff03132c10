package resources

import (
	"context"
	"strings"
)

// Service handles resource catalog business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all resources.
func (s *Service) List(ctx context.Context) ([]Resource, error) {
	return s.repo.List(ctx)
}

// Get fetches a resource by id.
func (s *Service) Get(ctx context.Context, id int64) (Resource, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether the resource id is present.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Create inserts a new resource into the catalog.
func (s *Service) Create(ctx context.Context, name, description string) (Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, ErrNameRequired
	}
	return s.repo.Create(ctx, name, strings.TrimSpace(description))
}

// Update fully replaces the resource's name and description.
func (s *Service) Update(ctx context.Context, id int64, name, description string) (Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, ErrNameRequired
	}
	return s.repo.Update(ctx, id, name, strings.TrimSpace(description))
}

// Delete removes a resource by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
