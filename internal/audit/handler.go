package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gewog/AccessGuard/internal/authz"
	"github.com/gewog/AccessGuard/internal/platform/httpx"
	"github.com/gewog/AccessGuard/internal/shared"
)

// Handler exposes the decision timeline. Reading it counts as reading the
// rule table, so it is gated by the rules resource.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   shared.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard shared.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.timeline)
}

type entryResponse struct {
	ID          int64     `json:"id"`
	PrincipalID int64     `json:"principal_id"`
	ResourceID  int64     `json:"resource_id"`
	Action      string    `json:"action"`
	Allowed     bool      `json:"allowed"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"occurred_at"`
}

type timelineResponse struct {
	Entries  []entryResponse `json:"entries"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasNext  bool            `json:"has_next"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, authz.ResourceRules, authz.ActionRead); !ok {
		return
	}

	filters := TimelineFilters{
		PrincipalID: queryInt64(r, "principal_id"),
		ResourceID:  queryInt64(r, "resource_id"),
		DeniedOnly:  r.URL.Query().Get("denied") == "true",
		Page:        int(queryInt64(r, "page")),
		PageSize:    int(queryInt64(r, "page_size")),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = t
		}
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	entries := make([]entryResponse, 0, len(result.Rows))
	for _, e := range result.Rows {
		entries = append(entries, entryResponse{
			ID:          e.ID,
			PrincipalID: e.PrincipalID,
			ResourceID:  e.ResourceID,
			Action:      e.Action,
			Allowed:     e.Allowed,
			Reason:      e.Reason,
			At:          e.At,
		})
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{
		Entries:  entries,
		Page:     result.Paging.Page,
		PageSize: result.Paging.PageSize,
		HasNext:  result.Paging.HasNext,
	})
}

func queryInt64(r *http.Request, name string) int64 {
	value, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
