package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrPrincipalNotFound indicates the acting principal id resolved from the
// credential does not exist in the account store.
var ErrPrincipalNotFound = errors.New("authz: principal not found")

// ErrUnknownAction indicates an action outside read/create/update/delete.
var ErrUnknownAction = errors.New("authz: unknown action")

// Snapshot is a consistent view of everything Decide needs: the principal's
// active flag and role, plus the rules matching (role, resource). The store
// must produce it from a single atomic read.
type Snapshot struct {
	PrincipalFound bool
	Active         bool
	RoleID         int64
	Rules          []Rule
}

// Store loads decision snapshots.
type Store interface {
	DecisionSnapshot(ctx context.Context, principalID, resourceID int64) (Snapshot, error)
}

// Recorder receives the outcome of every evaluation for auditing. Recording
// is best effort and never influences the decision.
type Recorder interface {
	RecordDecision(ctx context.Context, principalID, resourceID int64, action Action, decision Decision)
}

// Engine evaluates allow/deny decisions against the rule table.
type Engine struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

// NewEngine constructs an Engine. recorder may be nil.
func NewEngine(store Store, recorder Recorder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, recorder: recorder, logger: logger}
}

// Decide evaluates whether principalID may perform action on resourceID.
//
// The evaluation is total: every input yields Allow, Deny with a reason, or
// an error. Unknown principals are an error rather than a denial so callers
// can tell a broken credential from a policy outcome.
func (e *Engine) Decide(ctx context.Context, principalID, resourceID int64, action Action) (Decision, error) {
	if !action.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	snap, err := e.store.DecisionSnapshot(ctx, principalID, resourceID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz: load snapshot: %w", err)
	}
	if !snap.PrincipalFound {
		return Decision{}, ErrPrincipalNotFound
	}

	decision := e.evaluate(principalID, resourceID, snap, action)
	if e.recorder != nil {
		e.recorder.RecordDecision(ctx, principalID, resourceID, action, decision)
	}
	return decision, nil
}

func (e *Engine) evaluate(principalID, resourceID int64, snap Snapshot, action Action) Decision {
	if !snap.Active {
		return Deny(ReasonInactive)
	}
	if len(snap.Rules) == 0 {
		return Deny(ReasonNoRule)
	}
	// The (role, resource) pair is unique by constraint. Should the backing
	// store ever hold duplicates anyway, take the lowest id deterministically
	// instead of aggregating grants.
	rule := snap.Rules[0]
	if len(snap.Rules) > 1 {
		e.logger.Warn("duplicate access rules for role/resource pair",
			slog.Int64("role_id", snap.RoleID),
			slog.Int64("resource_id", resourceID),
			slog.Int64("rule_id", rule.ID),
			slog.Int("matches", len(snap.Rules)))
	}
	if !rule.Permits(action) {
		return Deny(ReasonForbidden)
	}
	return Allow()
}
