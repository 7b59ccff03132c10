// Package shared holds cross-module glue: the authorization guard used by
// every protected handler.
package shared

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/platform/httpx"
)

// PrincipalResolver maps a request credential to a principal id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, r *http.Request) (int64, error)
}

// Decider evaluates an action on a resource for a principal.
type Decider interface {
	Decide(ctx context.Context, principalID, resourceID int64, action authz.Action) (authz.Decision, error)
}

// Guard bundles principal resolution with the decision engine. Every guarded
// handler resolves the acting principal through it and passes the id onward
// explicitly; there is no ambient current user.
type Guard struct {
	Resolver PrincipalResolver
	Engine   Decider
	Logger   *slog.Logger
}

// Principal resolves the acting principal, writing a 401 problem on failure.
func (g Guard) Principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := g.Resolver.Resolve(r.Context(), r)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "valid credential required")
		return 0, false
	}
	return id, true
}

// Require resolves the acting principal and evaluates action on resourceID.
// On any failure it writes the response and reports false; handlers proceed
// only on true. Deny reasons keep their identity in the response so logs can
// tell a missing rule from an explicit denial from a deactivated account.
func (g Guard) Require(w http.ResponseWriter, r *http.Request, resourceID int64, action authz.Action) (int64, bool) {
	principalID, ok := g.Principal(w, r)
	if !ok {
		return 0, false
	}
	decision, err := g.Engine.Decide(r.Context(), principalID, resourceID, action)
	if err != nil {
		if errors.Is(err, authz.ErrPrincipalNotFound) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown principal")
			return 0, false
		}
		if g.Logger != nil {
			g.Logger.Error("authorization decision failed",
				slog.Int64("principal_id", principalID),
				slog.Int64("resource_id", resourceID),
				slog.String("action", string(action)),
				slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return 0, false
	}
	if !decision.Allowed {
		RespondDenied(w, decision)
		return 0, false
	}
	return principalID, true
}

// RespondDenied writes a 403 problem whose title preserves the deny reason.
func RespondDenied(w http.ResponseWriter, decision authz.Decision) {
	switch decision.Reason {
	case authz.ReasonInactive:
		httpx.Problem(w, http.StatusForbidden, "Account Inactive", "account has been deactivated")
	case authz.ReasonNoRule:
		httpx.Problem(w, http.StatusForbidden, "No Access Rule", "no access rule defined for this resource")
	default:
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access rule denies this action")
	}
}
