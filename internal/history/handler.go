package history

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vedaro/shopdesk/internal/platform/httpx"
	"github.com/vedaro/shopdesk/internal/shared"
)

// Handler exposes the invoice-items history.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers history routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	items, err := h.service.Items(r.Context(), sess.StaffID())
	if err != nil {
		h.logger.Error("fetch history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}
