package authz

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	snapshots map[[2]int64]Snapshot
	err       error
	calls     int
}

func (s *stubStore) DecisionSnapshot(ctx context.Context, principalID, resourceID int64) (Snapshot, error) {
	s.calls++
	if s.err != nil {
		return Snapshot{}, s.err
	}
	return s.snapshots[[2]int64{principalID, resourceID}], nil
}

type captureRecorder struct {
	entries []Decision
}

func (c *captureRecorder) RecordDecision(ctx context.Context, principalID, resourceID int64, action Action, decision Decision) {
	c.entries = append(c.entries, decision)
}

func activeSnapshot(roleID int64, rules ...Rule) Snapshot {
	return Snapshot{PrincipalFound: true, Active: true, RoleID: roleID, Rules: rules}
}

func TestDecideDenyByDefault(t *testing.T) {
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceRoles}: activeSnapshot(10),
	}}
	engine := NewEngine(store, nil, nil)

	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		decision, err := engine.Decide(context.Background(), 1, ResourceRoles, action)
		if err != nil {
			t.Fatalf("decide %s: %v", action, err)
		}
		if decision.Allowed {
			t.Fatalf("expected deny for %s with no rule", action)
		}
		if decision.Reason != ReasonNoRule {
			t.Fatalf("expected no_rule reason, got %q", decision.Reason)
		}
	}
}

func TestDecideInactiveNeverAllowed(t *testing.T) {
	rule := Rule{ID: 1, RoleID: 10, ResourceID: ResourceRoles, Read: true, Create: true, Update: true, Delete: true}
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceRoles}: {PrincipalFound: true, Active: false, RoleID: 10, Rules: []Rule{rule}},
	}}
	engine := NewEngine(store, nil, nil)

	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		decision, err := engine.Decide(context.Background(), 1, ResourceRoles, action)
		if err != nil {
			t.Fatalf("decide %s: %v", action, err)
		}
		if decision.Allowed {
			t.Fatalf("inactive principal got allow for %s", action)
		}
		if decision.Reason != ReasonInactive {
			t.Fatalf("expected inactive reason, got %q", decision.Reason)
		}
	}
}

func TestDecidePerActionBits(t *testing.T) {
	rule := Rule{ID: 1, RoleID: 10, ResourceID: ResourceRules, Read: true}
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceRules}: activeSnapshot(10, rule),
	}}
	engine := NewEngine(store, nil, nil)

	decision, err := engine.Decide(context.Background(), 1, ResourceRules, ActionRead)
	if err != nil {
		t.Fatalf("decide read: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow for read, got deny %q", decision.Reason)
	}

	decision, err = engine.Decide(context.Background(), 1, ResourceRules, ActionCreate)
	if err != nil {
		t.Fatalf("decide create: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny for create")
	}
	if decision.Reason != ReasonForbidden {
		t.Fatalf("expected forbidden reason, got %q", decision.Reason)
	}
}

func TestDecideIdempotent(t *testing.T) {
	rule := Rule{ID: 1, RoleID: 10, ResourceID: ResourceAccounts, Update: true}
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceAccounts}: activeSnapshot(10, rule),
	}}
	engine := NewEngine(store, nil, nil)

	first, err := engine.Decide(context.Background(), 1, ResourceAccounts, ActionUpdate)
	if err != nil {
		t.Fatalf("first decide: %v", err)
	}
	second, err := engine.Decide(context.Background(), 1, ResourceAccounts, ActionUpdate)
	if err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical decisions, got %+v then %+v", first, second)
	}
}

func TestDecideUnknownPrincipal(t *testing.T) {
	store := &stubStore{snapshots: map[[2]int64]Snapshot{}}
	engine := NewEngine(store, nil, nil)

	_, err := engine.Decide(context.Background(), 42, ResourceRoles, ActionRead)
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestDecideUnknownAction(t *testing.T) {
	store := &stubStore{snapshots: map[[2]int64]Snapshot{}}
	engine := NewEngine(store, nil, nil)

	_, err := engine.Decide(context.Background(), 1, ResourceRoles, Action("export"))
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store consulted for invalid action")
	}
}

func TestDecideDuplicateRulesFirstMatchWins(t *testing.T) {
	// First rule by id denies read; a later duplicate would grant it. The
	// engine must not aggregate.
	first := Rule{ID: 1, RoleID: 10, ResourceID: ResourceRoles, Create: true}
	second := Rule{ID: 2, RoleID: 10, ResourceID: ResourceRoles, Read: true}
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceRoles}: activeSnapshot(10, first, second),
	}}
	engine := NewEngine(store, nil, nil)

	decision, err := engine.Decide(context.Background(), 1, ResourceRoles, ActionRead)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny: first matching rule does not grant read")
	}
}

func TestDecideRecordsOutcome(t *testing.T) {
	rule := Rule{ID: 1, RoleID: 10, ResourceID: ResourceRoles, Read: true}
	store := &stubStore{snapshots: map[[2]int64]Snapshot{
		{1, ResourceRoles}: activeSnapshot(10, rule),
	}}
	recorder := &captureRecorder{}
	engine := NewEngine(store, recorder, nil)

	if _, err := engine.Decide(context.Background(), 1, ResourceRoles, ActionRead); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 recorded decision, got %d", len(recorder.entries))
	}
	if !recorder.entries[0].Allowed {
		t.Fatalf("recorded decision should be allow")
	}
}

func TestDecideStoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &stubStore{err: storeErr}
	engine := NewEngine(store, nil, nil)

	_, err := engine.Decide(context.Background(), 1, ResourceRoles, ActionRead)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
