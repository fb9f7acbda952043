package httpx

import (
	"errors"
	"net/http"

	"github.com/vedaro/shopdesk/internal/shared"
)

// RespondError maps shared domain errors to RFC7807 responses. Feature
// handlers map their own sentinels first and fall through to this.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrBackend):
		Problem(w, http.StatusBadGateway, "Backend Error", "store backend call failed")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
