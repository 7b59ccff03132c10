package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRuleRepo struct {
	rules  map[int64]Rule
	nextID int64
}

func newMemoryRuleRepo() *memoryRuleRepo {
	return &memoryRuleRepo{rules: make(map[int64]Rule), nextID: 1}
}

func (m *memoryRuleRepo) List(ctx context.Context) ([]Rule, error) {
	out := make([]Rule, 0, len(m.rules))
	for _, rule := range m.rules {
		out = append(out, rule)
	}
	return out, nil
}

func (m *memoryRuleRepo) Get(ctx context.Context, id int64) (Rule, error) {
	rule, ok := m.rules[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return rule, nil
}

func (m *memoryRuleRepo) Create(ctx context.Context, rule Rule) (Rule, error) {
	for _, existing := range m.rules {
		if existing.RoleID == rule.RoleID && existing.ResourceID == rule.ResourceID {
			return Rule{}, ErrDuplicatePair
		}
	}
	rule.ID = m.nextID
	m.nextID++
	m.rules[rule.ID] = rule
	return rule, nil
}

func (m *memoryRuleRepo) Update(ctx context.Context, rule Rule) (Rule, error) {
	if _, ok := m.rules[rule.ID]; !ok {
		return Rule{}, ErrNotFound
	}
	for _, existing := range m.rules {
		if existing.ID != rule.ID && existing.RoleID == rule.RoleID && existing.ResourceID == rule.ResourceID {
			return Rule{}, ErrDuplicatePair
		}
	}
	m.rules[rule.ID] = rule
	return rule, nil
}

func (m *memoryRuleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

type setChecker map[int64]bool

func (s setChecker) Exists(ctx context.Context, id int64) (bool, error) {
	return s[id], nil
}

func TestCreateValidatesReferences(t *testing.T) {
	repo := newMemoryRuleRepo()
	svc := NewService(repo, setChecker{1: true}, setChecker{2: true})

	_, err := svc.Create(context.Background(), Rule{RoleID: 99, ResourceID: 2, Read: true})
	require.ErrorIs(t, err, ErrRoleMissing)

	_, err = svc.Create(context.Background(), Rule{RoleID: 1, ResourceID: 99, Read: true})
	require.ErrorIs(t, err, ErrResourceMissing)

	rule, err := svc.Create(context.Background(), Rule{RoleID: 1, ResourceID: 2, Read: true})
	require.NoError(t, err)
	require.NotZero(t, rule.ID)
	require.True(t, rule.Read)
	require.False(t, rule.Create)
}

func TestCreateDuplicatePair(t *testing.T) {
	repo := newMemoryRuleRepo()
	svc := NewService(repo, setChecker{1: true}, setChecker{2: true})

	_, err := svc.Create(context.Background(), Rule{RoleID: 1, ResourceID: 2, Read: true})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Rule{RoleID: 1, ResourceID: 2, Delete: true})
	require.ErrorIs(t, err, ErrDuplicatePair)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	repo := newMemoryRuleRepo()
	svc := NewService(repo, setChecker{1: true, 3: true}, setChecker{2: true})

	created, err := svc.Create(context.Background(), Rule{RoleID: 1, ResourceID: 2, Read: true, Create: true})
	require.NoError(t, err)

	// Full replace: omitted bits reset to false.
	updated, err := svc.Update(context.Background(), Rule{ID: created.ID, RoleID: 3, ResourceID: 2, Update: true})
	require.NoError(t, err)
	require.Equal(t, int64(3), updated.RoleID)
	require.False(t, updated.Read)
	require.False(t, updated.Create)
	require.True(t, updated.Update)
}

func TestUpdateUnknownRule(t *testing.T) {
	repo := newMemoryRuleRepo()
	svc := NewService(repo, setChecker{1: true}, setChecker{2: true})

	_, err := svc.Update(context.Background(), Rule{ID: 42, RoleID: 1, ResourceID: 2})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownRule(t *testing.T) {
	repo := newMemoryRuleRepo()
	svc := NewService(repo, setChecker{}, setChecker{})

	require.ErrorIs(t, svc.Delete(context.Background(), 42), ErrNotFound)
}
