package rules

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/platform/httpx"
	"github.com/gewog/AccessGuard/internal/shared"
)

// Handler manages access-rule CRUD. The rule table governs access to itself:
// every operation here is gated by the caller's permissions on the rules
// resource, so a role without the create bit cannot grant itself anything.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     shared.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard shared.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers access-rule routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{ruleID}", h.get)
	r.Put("/{ruleID}", h.update)
	r.Delete("/{ruleID}", h.delete)
}

type ruleRequest struct {
	RoleID     int64 `json:"role_id" validate:"required,gt=0"`
	ResourceID int64 `json:"resource_id" validate:"required,gt=0"`
	Read       bool  `json:"read_permission"`
	Create     bool  `json:"create_permission"`
	Update     bool  `json:"update_permission"`
	Delete     bool  `json:"delete_permission"`
}

type ruleResponse struct {
	ID         int64 `json:"id"`
	RoleID     int64 `json:"role_id"`
	ResourceID int64 `json:"resource_id"`
	Read       bool  `json:"read_permission"`
	Create     bool  `json:"create_permission"`
	Update     bool  `json:"update_permission"`
	Delete     bool  `json:"delete_permission"`
}

func toResponse(rule Rule) ruleResponse {
	return ruleResponse{
		ID:         rule.ID,
		RoleID:     rule.RoleID,
		ResourceID: rule.ResourceID,
		Read:       rule.Read,
		Create:     rule.Create,
		Update:     rule.Update,
		Delete:     rule.Delete,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionRead); !ok {
		return
	}
	items, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]ruleResponse, 0, len(items))
	for _, rule := range items {
		out = append(out, toResponse(rule))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionRead); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid rule id")
		return
	}
	rule, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(rule))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionCreate); !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	rule, err := h.service.Create(r.Context(), Rule{
		RoleID:     req.RoleID,
		ResourceID: req.ResourceID,
		Read:       req.Read,
		Create:     req.Create,
		Update:     req.Update,
		Delete:     req.Delete,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(rule))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionUpdate); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid rule id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	rule, err := h.service.Update(r.Context(), Rule{
		ID:         id,
		RoleID:     req.RoleID,
		ResourceID: req.ResourceID,
		Read:       req.Read,
		Create:     req.Create,
		Update:     req.Update,
		Delete:     req.Delete,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(rule))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionDelete); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid rule id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ruleRequest, bool) {
	var req ruleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "access rule does not exist")
	case errors.Is(err, ErrRoleMissing):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "referenced role does not exist")
	case errors.Is(err, ErrResourceMissing):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "referenced resource does not exist")
	case errors.Is(err, ErrDuplicatePair):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a rule for this role and resource already exists")
	default:
		h.logger.Error("access rule operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
