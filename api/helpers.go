package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/craftwork/handwerk/pkg/models"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error kinds to HTTP statuses: NotFound 404,
// Forbidden 403, Conflict 409, InvalidState 422, Validation 400. Anything
// else is a 500 with the detail kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusForbidden)
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, models.ErrInvalidState):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrValidation):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusBadRequest)
	default:
		logger.Error("internal error", slog.Any("err", err))
		writeJSON(w, errorResponse{Error: "internal server error"}, http.StatusInternalServerError)
	}
}

// caller returns the authenticated account id and role put into the request
// context by the JWT middleware.
func caller(r *http.Request) (int64, models.Role, bool) {
	id, ok := r.Context().Value(CtxAccountID).(int64)
	if !ok || id <= 0 {
		return 0, "", false
	}
	role, ok := r.Context().Value(CtxRole).(models.Role)
	if !ok {
		return 0, "", false
	}
	return id, role, true
}
