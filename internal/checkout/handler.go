package checkout

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vedaro/shopdesk/internal/platform/httpx"
	"github.com/vedaro/shopdesk/internal/shared"
)

// Handler exposes the checkout summarizer to the terminal UI.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("checkout summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) ResolveCustomer(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.ResolveCustomer(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

type submitRequest struct {
	CustomerDraft
	ConfirmExisting bool `json:"confirm_existing"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	err := h.service.Submit(r.Context(), req.CustomerDraft, req.ConfirmExisting)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusCreated, map[string]bool{"success": true})
	case errors.Is(err, ErrExistingCustomer):
		httpx.Problem(w, http.StatusConflict, "Existing Customer", "customer already found, confirm to continue")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("checkout submit", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
