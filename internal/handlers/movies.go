// Package handlers maps the HTTP surface onto the service layer. Handlers
// decode and validate transport concerns only; domain rules live in the
// services.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/catalog"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/store"
)

type movieListResponse struct {
	Movies     []store.Movie `json:"movies"`
	Pagination pagination    `json:"pagination"`
}

// ListMovies returns a filtered, sorted page of the catalog.
func ListMovies(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.MovieFilter{
			Search:   strings.TrimSpace(q.Get("search")),
			Genre:    strings.TrimSpace(q.Get("genre")),
			SortBy:   strings.TrimSpace(q.Get("sort_by")),
			SortDesc: strings.EqualFold(q.Get("order"), "desc"),
			Page:     parsePage(r),
		}

		movies, total, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if movies == nil {
			movies = []store.Movie{}
		}
		api.WriteJSON(w, http.StatusOK, movieListResponse{
			Movies:     movies,
			Pagination: paginationMeta(f.Page, total),
		})
	}
}

// GetMovie returns a movie with its reviews.
func GetMovie(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		if id == "" {
			rid := httpserver.RequestIDFromContext(r.Context())
			api.BadRequest(w, "MISSING_ID", "movie_id is required", rid, nil)
			return
		}

		viewerID, _ := requesterOptional(r)
		detail, err := svc.Get(r.Context(), id, viewerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, detail)
	}
}

// CreateMovie adds a catalog entry. Routed behind RequireAdmin.
func CreateMovie(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, isAdmin, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		var in store.MovieInput
		if err := decodeJSON(w, r, &in); err != nil {
			return
		}
		m, err := svc.Create(r.Context(), isAdmin, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, m)
	}
}

// UpdateMovie replaces a movie's catalog fields. Routed behind RequireAdmin.
func UpdateMovie(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, isAdmin, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		var in store.MovieInput
		if err := decodeJSON(w, r, &in); err != nil {
			return
		}
		m, err := svc.Update(r.Context(), isAdmin, id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

// DeleteMovie removes a movie and its dependents. Routed behind RequireAdmin.
func DeleteMovie(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, isAdmin, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		if err := svc.Delete(r.Context(), isAdmin, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// requesterOptional is for public routes where a viewer may or may not be
// authenticated.
func requesterOptional(r *http.Request) (string, bool) {
	uid, _, ok := requester(r)
	return uid, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	rid := httpserver.RequestIDFromContext(r.Context())
	api.Unauthorized(w, "UNAUTHORIZED", "authentication required", rid)
}

// decodeJSON reads a bounded JSON body; on failure it writes the 400 itself
// and returns the error so the caller can bail.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		rid := httpserver.RequestIDFromContext(r.Context())
		api.BadRequest(w, "INVALID_BODY", "invalid JSON body", rid, nil)
		return err
	}
	return nil
}
