package accounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gewog/AccessGuard/internal/platform/httpx"
	"github.com/gewog/AccessGuard/internal/shared"
	"github.com/gewog/AccessGuard/internal/token"
)

// Handler wires HTTP endpoints for registration, login and self-service.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *token.Resolver
	guard     shared.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *token.Resolver, guard shared.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountAuthRoutes registers credential endpoints.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

// MountProfileRoutes registers self-service endpoints.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Put("/me", h.updateMe)
	r.Delete("/me", h.deactivateMe)
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RoleID    int64  `json:"role_id"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	// Registration is refused while a valid credential is presented. A UX
	// guard, not a security boundary: log out first.
	if h.tokens.Authenticated(r.Context(), r) {
		httpx.Problem(w, http.StatusForbidden, "Already Authenticated", "log out before registering")
		return
	}

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	acct, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Invalid Credentials", "email or password incorrect")
		return
	}
	cookie, err := h.tokens.Issue(acct.ID)
	if err != nil {
		h.logger.Error("issue credential", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	http.SetCookie(w, cookie)
	httpx.JSON(w, http.StatusOK, accountResponse{
		ID:        acct.ID,
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		RoleID:    acct.RoleID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.tokens.Revoke(r.Context(), r)
	if err != nil {
		h.logger.Warn("revoke credential", slog.Any("error", err))
	}
	http.SetCookie(w, cleared)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principalID, ok := h.guard.Principal(w, r)
	if !ok {
		return
	}
	acct, err := h.service.Profile(r.Context(), principalID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accountResponse{
		ID:        acct.ID,
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		RoleID:    acct.RoleID,
	})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	principalID, ok := h.guard.Principal(w, r)
	if !ok {
		return
	}
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.UpdateProfile(r.Context(), principalID, RegisterInput{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "profile updated"})
}

func (h *Handler) deactivateMe(w http.ResponseWriter, r *http.Request) {
	principalID, ok := h.guard.Principal(w, r)
	if !ok {
		return
	}
	if err := h.service.Deactivate(r.Context(), principalID); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "passwords do not match")
	case errors.Is(err, ErrSecretTooLong):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "password must not exceed 72 bytes")
	case errors.Is(err, ErrEmailTaken):
		httpx.Problem(w, http.StatusConflict, "Email Taken", "an account with this email already exists")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
	case errors.Is(err, ErrAlreadyInactive):
		httpx.Problem(w, http.StatusConflict, "Already Inactive", "account is already deactivated")
	case errors.Is(err, ErrInactive):
		httpx.Problem(w, http.StatusForbidden, "Account Inactive", "account has been deactivated")
	default:
		h.logger.Error("account operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
