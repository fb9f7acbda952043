package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vedaro/shopdesk/internal/platform/httpx"
	"github.com/vedaro/shopdesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/profile", h.handleProfile)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password required")
		return
	}

	token, staff, err := h.service.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.logger.Warn("staff login failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetStaff(strconv.FormatInt(staff.ID, 10), staff.Name, token)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"staff": staff,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Authenticated() {
		if err := h.service.Logout(r.Context()); err != nil {
			h.logger.Warn("backend logout failed", slog.Any("error", err))
		}
	}
	h.sessions.Destroy(sess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if !sess.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "staff login required")
		return
	}
	staff, err := h.service.Profile(r.Context())
	if err != nil {
		h.logger.Error("fetch profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, staff)
}
