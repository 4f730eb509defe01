// Package catalog manages the movie collection. Movies are a global,
// administrator-owned resource; deleting one cascades to its reviews and
// watchlist entries.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

type Service struct {
	Movies  store.MovieStore
	Reviews store.ReviewStore
	Log     *zap.Logger
	Events  *analytics.Publisher
}

// MovieDetail is a movie together with its reviews for the detail page.
type MovieDetail struct {
	store.Movie
	Reviews     []store.ReviewWithAuthor `json:"reviews"`
	ReviewCount int                      `json:"review_count"`
}

func validateInput(in store.MovieInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", store.ErrInvalidInput)
	}
	if in.ReleaseYear != 0 && (in.ReleaseYear < 1888 || in.ReleaseYear > time.Now().Year()+5) {
		return fmt.Errorf("%w: release_year out of range", store.ErrInvalidInput)
	}
	return nil
}

// Create adds a movie to the catalog. Admin only.
func (s *Service) Create(ctx context.Context, isAdmin bool, in store.MovieInput) (store.Movie, error) {
	if !isAdmin {
		return store.Movie{}, fmt.Errorf("%w: admin required", store.ErrForbidden)
	}
	if err := validateInput(in); err != nil {
		return store.Movie{}, err
	}
	m, err := s.Movies.CreateMovie(ctx, in)
	if err != nil {
		return store.Movie{}, err
	}
	s.Log.Info("movie created", zap.String("movie_id", m.ID), zap.String("title", m.Title))
	return m, nil
}

// Update replaces a movie's catalog fields. Admin only; the cached rating
// is untouched.
func (s *Service) Update(ctx context.Context, isAdmin bool, id string, in store.MovieInput) (store.Movie, error) {
	if !isAdmin {
		return store.Movie{}, fmt.Errorf("%w: admin required", store.ErrForbidden)
	}
	if err := validateInput(in); err != nil {
		return store.Movie{}, err
	}
	return s.Movies.UpdateMovie(ctx, id, in)
}

// Delete removes a movie and everything referencing it. Admin only.
func (s *Service) Delete(ctx context.Context, isAdmin bool, id string) error {
	if !isAdmin {
		return fmt.Errorf("%w: admin required", store.ErrForbidden)
	}
	if err := s.Movies.DeleteMovie(ctx, id); err != nil {
		return err
	}
	s.Log.Info("movie deleted", zap.String("movie_id", id))
	return nil
}

// Get returns the movie with its reviews. viewerID, when known, goes into
// the analytics event only.
func (s *Service) Get(ctx context.Context, id, viewerID string) (MovieDetail, error) {
	m, err := s.Movies.GetMovie(ctx, id)
	if err != nil {
		return MovieDetail{}, err
	}
	revs, total, err := s.Reviews.ListMovieReviews(ctx, id, store.Page{Page: 1, Limit: 50})
	if err != nil {
		return MovieDetail{}, err
	}
	s.Events.Publish(analytics.SubjectMovieViewed, "movie_viewed", viewerID, map[string]any{
		"movie_id": id,
	})
	return MovieDetail{Movie: m, Reviews: revs, ReviewCount: total}, nil
}

// List returns a filtered, sorted page of the catalog with the total match
// count. SortBy is allow-listed; unknown fields fall back to created_at.
func (s *Service) List(ctx context.Context, f store.MovieFilter) ([]store.Movie, int, error) {
	switch f.SortBy {
	case "title", "release_year", "avg_rating", "created_at", "":
	default:
		f.SortBy = "created_at"
	}
	return s.Movies.ListMovies(ctx, f)
}
