// Package watchlist enforces the one-entry-per-user-per-movie invariant and
// serves watchlist reads.
package watchlist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

type Service struct {
	Watchlist store.WatchlistStore
	Movies    store.MovieStore
	Log       *zap.Logger
	Events    *analytics.Publisher
}

// Add puts a movie on the user's watchlist. A duplicate add is an error,
// not a silent no-op.
func (s *Service) Add(ctx context.Context, userID, movieID string) (store.WatchlistEntry, error) {
	ok, err := s.Movies.MovieExists(ctx, movieID)
	if err != nil {
		return store.WatchlistEntry{}, err
	}
	if !ok {
		return store.WatchlistEntry{}, fmt.Errorf("%w: movie", store.ErrNotFound)
	}

	w, err := s.Watchlist.AddWatchlistEntry(ctx, userID, movieID)
	if err != nil {
		return store.WatchlistEntry{}, err
	}
	s.Events.Publish(analytics.SubjectWatchlistAdded, "watchlist_added", userID, map[string]any{
		"movie_id": movieID,
	})
	return w, nil
}

func (s *Service) Remove(ctx context.Context, userID, movieID string) error {
	if err := s.Watchlist.RemoveWatchlistEntry(ctx, userID, movieID); err != nil {
		return err
	}
	s.Events.Publish(analytics.SubjectWatchlistRemoved, "watchlist_removed", userID, map[string]any{
		"movie_id": movieID,
	})
	return nil
}

// Status reports membership and never fails: an unknown movie reads as
// "not on the list", and a storage error degrades to false after logging.
// The strict validation lives on the Add path.
func (s *Service) Status(ctx context.Context, userID, movieID string) bool {
	ok, err := s.Watchlist.WatchlistContains(ctx, userID, movieID)
	if err != nil {
		s.Log.Warn("watchlist status check failed",
			zap.String("user_id", userID),
			zap.String("movie_id", movieID),
			zap.Error(err))
		return false
	}
	return ok
}

// Toggle adds or removes based on the caller-supplied presence flag. The
// flag is not re-derived here, so a stale caller gets the underlying
// ErrAlreadyExists/ErrNotFound back and should re-fetch Status.
func (s *Service) Toggle(ctx context.Context, userID, movieID string, currentlyPresent bool) error {
	if currentlyPresent {
		return s.Remove(ctx, userID, movieID)
	}
	_, err := s.Add(ctx, userID, movieID)
	return err
}

func (s *Service) List(ctx context.Context, userID string, p store.Page) ([]store.WatchlistItem, int, error) {
	return s.Watchlist.ListWatchlist(ctx, userID, p)
}

func (s *Service) Stats(ctx context.Context, userID string) (store.WatchlistStats, error) {
	return s.Watchlist.GetWatchlistStats(ctx, userID)
}
