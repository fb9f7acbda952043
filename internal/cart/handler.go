package cart

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vedaro/shopdesk/internal/platform/httpx"
)

// Handler exposes the cart reconciler to the terminal UI.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Fetch(r.Context())
	if err != nil {
		h.logger.Error("fetch cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type addRequest struct {
	Identifier string `json:"identifier"`
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Identifier == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product identifier required")
		return
	}
	view, err := h.service.AddOrIncrease(r.Context(), req.Identifier)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) Increase(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid line id")
		return
	}
	view, err := h.service.Increase(r.Context(), lineID)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type decreaseRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (h *Handler) Decrease(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid line id")
		return
	}
	var req decreaseRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
			return
		}
	}
	view, err := h.service.Decrease(r.Context(), lineID, req.Confirmed)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrStockLimit):
		httpx.Problem(w, http.StatusConflict, "Stock Limit", "no more stock available")
	case errors.Is(err, ErrRemovalConfirmationRequired):
		httpx.Problem(w, http.StatusConflict, "Removal Confirmation Required", "decreasing below one removes the item")
	case errors.Is(err, ErrMutationInFlight):
		httpx.Problem(w, http.StatusConflict, "Mutation In Flight", "a change for this line is still pending")
	case errors.Is(err, ErrLineNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "cart line not found")
	default:
		h.logger.Error("cart mutation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
