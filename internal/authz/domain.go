// Package authz implements the permission evaluation engine. Every guarded
// operation in the service funnels through Engine.Decide; handlers never
// consult the rule table directly.
package authz

// Action is one of the four capabilities a rule can grant.
type Action string

// Actions understood by the engine.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether the action is one the engine evaluates.
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Well-known resource identifiers. The rule table governs access to itself:
// mutating rules or resources requires permission on ResourceRules. The ids
// match the seed order and must not be renumbered without reseeding.
const (
	ResourceAccounts int64 = 1
	ResourceRoles    int64 = 2
	ResourceRules    int64 = 3
)

// Reason explains why a decision denied access.
type Reason string

// Deny reasons. They are distinct on purpose: "no rule defined" and "rule
// exists but denies" and "account inactive" must stay distinguishable in
// responses and audit records.
const (
	ReasonInactive  Reason = "inactive"
	ReasonNoRule    Reason = "no_rule"
	ReasonForbidden Reason = "forbidden"
)

// Decision is the outcome of evaluating a principal's permission for an
// action on a resource.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a negative decision carrying its reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Rule is the (role, resource) policy row. All four bits default to false:
// absence of a grant is a denial.
type Rule struct {
	ID         int64
	RoleID     int64
	ResourceID int64
	Read       bool
	Create     bool
	Update     bool
	Delete     bool
}

// Permits reports whether the rule grants the given action.
func (r Rule) Permits(action Action) bool {
	switch action {
	case ActionRead:
		return r.Read
	case ActionCreate:
		return r.Create
	case ActionUpdate:
		return r.Update
	case ActionDelete:
		return r.Delete
	}
	return false
}
