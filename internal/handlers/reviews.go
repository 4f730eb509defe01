package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/reviews"
	"github.com/example/movie-platform/internal/store"
)

type submitReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type reviewListResponse struct {
	Reviews    []store.Review `json:"reviews"`
	Pagination pagination     `json:"pagination"`
}

type movieReviewListResponse struct {
	Reviews    []store.ReviewWithAuthor `json:"reviews"`
	Pagination pagination               `json:"pagination"`
}

// ListMovieReviews returns a movie's reviews, newest first, each with the
// reviewer's username and picture.
func ListMovieReviews(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		p := parsePage(r)

		revs, total, err := svc.ListByMovie(r.Context(), movieID, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if revs == nil {
			revs = []store.ReviewWithAuthor{}
		}
		api.WriteJSON(w, http.StatusOK, movieReviewListResponse{Reviews: revs, Pagination: paginationMeta(p, total)})
	}
}

// SubmitReview creates or updates the caller's review for a movie. A create
// is a 201, an in-place update a 200.
func SubmitReview(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))

		var req submitReviewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}

		res, err := svc.Submit(r.Context(), userID, movieID, req.Rating, req.ReviewText)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, res)
	}
}

// DeleteReview removes a review; the service enforces owner-or-admin.
func DeleteReview(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, isAdmin, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))

		if err := svc.Delete(r.Context(), userID, isAdmin, reviewID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListUserReviews returns any user's reviews by id.
func ListUserReviews(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
		p := parsePage(r)

		revs, total, err := svc.ListByUser(r.Context(), userID, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if revs == nil {
			revs = []store.Review{}
		}
		api.WriteJSON(w, http.StatusOK, reviewListResponse{Reviews: revs, Pagination: paginationMeta(p, total)})
	}
}

// MyReviews returns the caller's own reviews.
func MyReviews(svc *reviews.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		p := parsePage(r)

		revs, total, err := svc.ListByUser(r.Context(), userID, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if revs == nil {
			revs = []store.Review{}
		}
		api.WriteJSON(w, http.StatusOK, reviewListResponse{Reviews: revs, Pagination: paginationMeta(p, total)})
	}
}
