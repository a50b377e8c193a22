package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/vaultgate/pkg/storage"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response", slog.String("error", err.Error()))
	}
}

// respondError maps domain errors to wire responses. Validation errors
// surface their rule code; backend faults stay opaque and are only
// logged.
func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *storage.FileValidationError
	switch {
	case errors.As(err, &verr):
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: verr.Message, Code: verr.Code})
	case errors.Is(err, storage.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound,
			errorResponse{Error: "file not found"})
	default:
		h.log.ErrorContext(ctx, "storage backend fault",
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "storage backend error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
