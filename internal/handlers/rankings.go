package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/rankings"
)

type rankingResponse struct {
	Movies []rankings.MovieWithStats `json:"movies"`
	Count  int                       `json:"count"`
}

// TopRated serves the top-rated listing. ?min_reviews= and ?limit= override
// the defaults.
func TopRated(eng *rankings.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := rankings.Params{
			Limit:      queryInt(r, "limit", 0),
			MinReviews: queryInt(r, "min_reviews", 0),
		}
		serveRanking(w, r, eng, rankings.TopRated, p)
	}
}

// Trending serves the recent-activity listing. ?days= overrides the window.
func Trending(eng *rankings.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := rankings.Params{
			Limit:      queryInt(r, "limit", 0),
			WindowDays: queryInt(r, "days", 0),
		}
		serveRanking(w, r, eng, rankings.Trending, p)
	}
}

// Category serves the named category listings: latest, highest-rated,
// most-reviewed. Unknown names are a 400.
func Category(eng *rankings.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := rankings.ModeFromCategory(chi.URLParam(r, "category"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		serveRanking(w, r, eng, mode, rankings.Params{Limit: queryInt(r, "limit", 0)})
	}
}

func serveRanking(w http.ResponseWriter, r *http.Request, eng *rankings.Engine, mode rankings.Mode, p rankings.Params) {
	movies, err := eng.Query(r.Context(), mode, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if movies == nil {
		movies = []rankings.MovieWithStats{}
	}
	api.WriteJSON(w, http.StatusOK, rankingResponse{Movies: movies, Count: len(movies)})
}
