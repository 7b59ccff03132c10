package resources

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

// Handler manages the protected-resource catalog. Managing the catalog is
// policy administration, so it is gated by the rules resource.
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

// MountRoutes registers resource catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{resourceID}", h.get)
	r.Put("/{resourceID}", h.update)
	r.Delete("/{resourceID}", h.delete)
}

type resourceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type resourceResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toResponse(res Resource) resourceResponse {
	return resourceResponse{ID: res.ID, Name: res.Name, Description: res.Description}
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
	out := make([]resourceResponse, 0, len(items))
	for _, res := range items {
		out = append(out, toResponse(res))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionRead); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "resourceID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid resource id")
		return
	}
	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(res))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionCreate); !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(res))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionUpdate); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "resourceID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid resource id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(res))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionDelete); !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "resourceID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid resource id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (resourceRequest, bool) {
	var req resourceRequest
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "resource does not exist")
	case errors.Is(err, ErrNameRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "resource name required")
	case errors.Is(err, ErrNameTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "resource name already exists")
	case errors.Is(err, ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", "resource is still referenced by access rules")
	default:
		h.logger.Error("resource operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
