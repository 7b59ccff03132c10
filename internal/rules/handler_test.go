package rules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/shared"
)

type principalState struct {
	active bool
	roleID int64
}

// memoryAuthzStore backs a real engine so the handler tests exercise the
// actual guard path, not a canned decision.
type memoryAuthzStore struct {
	principals map[int64]principalState
	rules      []authz.Rule
}

func (m *memoryAuthzStore) DecisionSnapshot(ctx context.Context, principalID, resourceID int64) (authz.Snapshot, error) {
	p, ok := m.principals[principalID]
	if !ok {
		return authz.Snapshot{}, nil
	}
	snap := authz.Snapshot{PrincipalFound: true, Active: p.active, RoleID: p.roleID}
	for _, rule := range m.rules {
		if rule.RoleID == p.roleID && rule.ResourceID == resourceID {
			snap.Rules = append(snap.Rules, rule)
		}
	}
	return snap, nil
}

type staticResolver struct {
	id int64
}

func (s staticResolver) Resolve(ctx context.Context, r *http.Request) (int64, error) {
	return s.id, nil
}

type allowAllChecker struct{}

func (allowAllChecker) Exists(ctx context.Context, id int64) (bool, error) { return true, nil }

func newRulesRouter(t *testing.T, store *memoryAuthzStore, repo RepositoryPort, principalID int64) chi.Router {
	t.Helper()
	engine := authz.NewEngine(store, nil, nil)
	guard := shared.Guard{Resolver: staticResolver{id: principalID}, Engine: engine}
	svc := NewService(repo, allowAllChecker{}, allowAllChecker{})
	handler := NewHandler(nil, svc, guard)
	router := chi.NewRouter()
	router.Route("/access-rules", handler.MountRoutes)
	return router
}

func postRule(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/access-rules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestSelfGatingWithoutRuleOnRuleTable(t *testing.T) {
	store := &memoryAuthzStore{principals: map[int64]principalState{
		1: {active: true, roleID: 10},
	}}

	repo := newMemoryRuleRepo()
	router := newRulesRouter(t, store, repo, 1)

	res := postRule(router, `{"role_id":10,"resource_id":2,"read_permission":true}`)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "No Access Rule") {
		t.Fatalf("expected no-rule denial, got %s", res.Body.String())
	}
	if got, _ := repo.List(context.Background()); len(got) != 0 {
		t.Fatalf("store mutated despite denial")
	}
}

func TestSelfGatingCannotEscalateWithReadOnlyRule(t *testing.T) {
	store := &memoryAuthzStore{principals: map[int64]principalState{
		1: {active: true, roleID: 10},
	}}
	// The role may read the rule table but not write it. Targeting the rule
	// table directly must not allow granting new permissions.
	store.rules = append(store.rules, authz.Rule{ID: 1, RoleID: 10, ResourceID: authz.ResourceRules, Read: true})

	repo := newMemoryRuleRepo()
	router := newRulesRouter(t, store, repo, 1)

	res := postRule(router, `{"role_id":10,"resource_id":3,"create_permission":true}`)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "Forbidden") {
		t.Fatalf("expected explicit denial, got %s", res.Body.String())
	}
}

func TestSelfGatingAllowsAfterGrant(t *testing.T) {
	store := &memoryAuthzStore{principals: map[int64]principalState{
		1: {active: true, roleID: 10},
	}}
	store.rules = append(store.rules, authz.Rule{ID: 1, RoleID: 10, ResourceID: authz.ResourceRules, Read: true, Create: true})

	repo := newMemoryRuleRepo()
	router := newRulesRouter(t, store, repo, 1)

	res := postRule(router, `{"role_id":10,"resource_id":2,"read_permission":true}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 stored rule, got %d", len(got))
	}
}

func TestInactivePrincipalDeniedOnRules(t *testing.T) {
	store := &memoryAuthzStore{principals: map[int64]principalState{
		1: {active: false, roleID: 10},
	}}
	store.rules = append(store.rules, authz.Rule{ID: 1, RoleID: 10, ResourceID: authz.ResourceRules, Read: true, Create: true, Update: true, Delete: true})

	repo := newMemoryRuleRepo()
	router := newRulesRouter(t, store, repo, 1)

	res := postRule(router, `{"role_id":10,"resource_id":2,"read_permission":true}`)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Account Inactive") {
		t.Fatalf("expected inactive denial, got %s", res.Body.String())
	}
}
