package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/watchlist"
)

type watchlistResponse struct {
	Items      []store.WatchlistItem `json:"items"`
	Pagination pagination            `json:"pagination"`
}

// GetWatchlist returns the caller's watchlist, most recently added first.
func GetWatchlist(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		p := parsePage(r)

		items, total, err := svc.List(r.Context(), userID, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if items == nil {
			items = []store.WatchlistItem{}
		}
		api.WriteJSON(w, http.StatusOK, watchlistResponse{Items: items, Pagination: paginationMeta(p, total)})
	}
}

// AddToWatchlist puts a movie on the caller's watchlist. Duplicates are a 409.
func AddToWatchlist(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))

		entry, err := svc.Add(r.Context(), userID, movieID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, entry)
	}
}

// RemoveFromWatchlist takes a movie off the caller's watchlist.
func RemoveFromWatchlist(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))

		if err := svc.Remove(r.Context(), userID, movieID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CheckWatchlist reports whether a movie is on the caller's watchlist. This
// endpoint never errors on bad movie ids; absence reads as false.
func CheckWatchlist(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))

		api.WriteJSON(w, http.StatusOK, map[string]bool{
			"in_watchlist": svc.Status(r.Context(), userID, movieID),
		})
	}
}

type toggleRequest struct {
	InWatchlist bool `json:"in_watchlist"`
}

// ToggleWatchlist adds or removes based on the client's view of the current
// state. A stale view surfaces as 409 or 404; the client should re-check.
func ToggleWatchlist(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))

		var req toggleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		if err := svc.Toggle(r.Context(), userID, movieID, req.InWatchlist); err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]bool{"in_watchlist": !req.InWatchlist})
	}
}

// WatchlistStats summarizes the caller's watchlist.
func WatchlistStats(svc *watchlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		stats, err := svc.Stats(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, stats)
	}
}
