// Package store defines the persistence contracts for movies, reviews,
// watchlist entries and users, with an in-memory implementation for
// development and tests and a Postgres implementation for production.
package store

import (
	"context"
	"time"
)

// MovieStore defines persistence operations for the movie catalog.
type MovieStore interface {
	CreateMovie(ctx context.Context, in MovieInput) (Movie, error)
	GetMovie(ctx context.Context, id string) (Movie, error)
	UpdateMovie(ctx context.Context, id string, in MovieInput) (Movie, error)
	// DeleteMovie removes the movie and cascades to its reviews and
	// watchlist entries.
	DeleteMovie(ctx context.Context, id string) error
	ListMovies(ctx context.Context, f MovieFilter) ([]Movie, int, error)
	MovieExists(ctx context.Context, id string) (bool, error)
	// MovieReviewStats returns every movie with lifetime review statistics
	// and, when since is non-zero, statistics restricted to reviews created
	// at or after since.
	MovieReviewStats(ctx context.Context, since time.Time) ([]MovieStats, error)
}

// ReviewStore defines persistence operations for reviews. Mutations
// recompute the parent movie's cached rating in the same atomic scope, so a
// failed recompute rolls the review write back instead of leaving the
// projection stale.
type ReviewStore interface {
	// UpsertReview creates the review for (userID, movieID) or updates the
	// existing one in place, preserving its id. created reports whether a
	// new row was inserted. Returns ErrNotFound if the movie is absent.
	UpsertReview(ctx context.Context, userID, movieID string, rating int, text string) (rev Review, created bool, err error)
	GetReview(ctx context.Context, id string) (Review, error)
	DeleteReview(ctx context.Context, id string) error
	// ListMovieReviews returns a movie's reviews newest first, each with the
	// reviewer's public identity attached.
	ListMovieReviews(ctx context.Context, movieID string, p Page) ([]ReviewWithAuthor, int, error)
	ListUserReviews(ctx context.Context, userID string, p Page) ([]Review, int, error)
}

// WatchlistStore defines persistence operations for watchlist entries.
type WatchlistStore interface {
	// AddWatchlistEntry returns ErrAlreadyExists for a duplicate
	// (userID, movieID) pair and ErrNotFound when the movie is absent.
	AddWatchlistEntry(ctx context.Context, userID, movieID string) (WatchlistEntry, error)
	RemoveWatchlistEntry(ctx context.Context, userID, movieID string) error
	WatchlistContains(ctx context.Context, userID, movieID string) (bool, error)
	ListWatchlist(ctx context.Context, userID string, p Page) ([]WatchlistItem, int, error)
	GetWatchlistStats(ctx context.Context, userID string) (WatchlistStats, error)
}

// UserStore defines persistence operations for accounts.
type UserStore interface {
	// CreateUser returns ErrAlreadyExists when email or username is taken.
	CreateUser(ctx context.Context, p CreateUserParams) (User, error)
	// FindUserByLogin matches email or username, case-insensitively.
	FindUserByLogin(ctx context.Context, login string) (User, string, error)
	GetUser(ctx context.Context, id string) (User, error)
	SetUserRole(ctx context.Context, id, role string) error
	// UpdateUserProfile applies a partial profile update, returning
	// ErrAlreadyExists when the new username or email is taken.
	UpdateUserProfile(ctx context.Context, id string, p ProfileUpdate) (User, error)
	SetUserPassword(ctx context.Context, id, passwordHash string) error
	UserPasswordHash(ctx context.Context, id string) (string, error)
}

// Store is the full persistence surface a backend implements.
type Store interface {
	MovieStore
	ReviewStore
	WatchlistStore
	UserStore
}
