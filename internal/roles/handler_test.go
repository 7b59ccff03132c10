package roles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/shared"
)

type memoryRoleRepo struct {
	roles  map[int64]Role
	nextID int64
}

func newMemoryRoleRepo() *memoryRoleRepo {
	return &memoryRoleRepo{roles: make(map[int64]Role), nextID: 1}
}

func (m *memoryRoleRepo) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, role := range m.roles {
		out = append(out, role)
	}
	return out, nil
}

func (m *memoryRoleRepo) Get(ctx context.Context, id int64) (Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (m *memoryRoleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.roles[id]
	return ok, nil
}

func (m *memoryRoleRepo) Create(ctx context.Context, name, description string) (Role, error) {
	for _, role := range m.roles {
		if role.Name == name {
			return Role{}, ErrNameTaken
		}
	}
	role := Role{ID: m.nextID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.nextID++
	m.roles[role.ID] = role
	return role, nil
}

func (m *memoryRoleRepo) Update(ctx context.Context, id int64, name, description string) (Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	role.Name = name
	role.Description = description
	role.UpdatedAt = time.Now()
	m.roles[id] = role
	return role, nil
}

func (m *memoryRoleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

type mutableAuthzStore struct {
	active bool
	roleID int64
	rules  []authz.Rule
}

func (m *mutableAuthzStore) DecisionSnapshot(ctx context.Context, principalID, resourceID int64) (authz.Snapshot, error) {
	snap := authz.Snapshot{PrincipalFound: true, Active: m.active, RoleID: m.roleID}
	for _, rule := range m.rules {
		if rule.RoleID == m.roleID && rule.ResourceID == resourceID {
			snap.Rules = append(snap.Rules, rule)
		}
	}
	return snap, nil
}

type staticResolver struct{ id int64 }

func (s staticResolver) Resolve(ctx context.Context, r *http.Request) (int64, error) {
	return s.id, nil
}

func TestCreateRoleDeniedThenAllowedAfterGrant(t *testing.T) {
	// Principal in the standard role with no rule for the roles resource.
	store := &mutableAuthzStore{active: true, roleID: 2}
	repo := newMemoryRoleRepo()
	engine := authz.NewEngine(store, nil, nil)
	guard := shared.Guard{Resolver: staticResolver{id: 1}, Engine: engine}
	handler := NewHandler(nil, NewService(repo), guard)
	router := chi.NewRouter()
	router.Route("/roles", handler.MountRoutes)

	body := `{"name":"auditor","description":"read everything"}`
	req := httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before grant, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "No Access Rule") {
		t.Fatalf("expected no-rule denial, got %s", res.Body.String())
	}

	// Grant create on the roles resource to the standard role.
	store.rules = append(store.rules, authz.Rule{ID: 1, RoleID: 2, ResourceID: authz.ResourceRoles, Create: true})

	req = httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(body))
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 after grant, got %d: %s", res.Code, res.Body.String())
	}

	stored, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 role, got %d", len(stored))
	}
	if stored[0].Name != "auditor" || stored[0].Description != "read everything" {
		t.Fatalf("unexpected stored role %+v", stored[0])
	}
}

func TestListRolesRequiresReadBit(t *testing.T) {
	store := &mutableAuthzStore{active: true, roleID: 2, rules: []authz.Rule{
		{ID: 1, RoleID: 2, ResourceID: authz.ResourceRoles, Create: true},
	}}
	handler := NewHandler(nil, NewService(newMemoryRoleRepo()), shared.Guard{
		Resolver: staticResolver{id: 1},
		Engine:   authz.NewEngine(store, nil, nil),
	})
	router := chi.NewRouter()
	router.Route("/roles", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for read without read bit, got %d", res.Code)
	}
}

func TestRoleValidation(t *testing.T) {
	svc := NewService(newMemoryRoleRepo())

	if _, err := svc.Create(context.Background(), "   ", "desc"); err != ErrNameRequired {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "ops", "first"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "ops", "second"); err != ErrNameTaken {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}
