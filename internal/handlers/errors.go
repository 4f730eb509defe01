package handlers

import (
	"errors"
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/store"
)

// writeError maps the store error taxonomy onto the JSON error envelope.
// Anything outside the taxonomy is a 500 with no detail leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	rid := httpserver.RequestIDFromContext(r.Context())
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		api.BadRequest(w, "INVALID_INPUT", err.Error(), rid, nil)
	case errors.Is(err, store.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", err.Error(), rid)
	case errors.Is(err, store.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", err.Error(), rid)
	case errors.Is(err, store.ErrAlreadyExists):
		api.Conflict(w, "ALREADY_EXISTS", err.Error(), rid, nil)
	default:
		api.Internal(w, rid)
	}
}
