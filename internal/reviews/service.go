// Package reviews enforces the review invariants: one review per user per
// movie, owner-or-admin deletion, and re-aggregation of the movie's cached
// rating after every mutation.
package reviews

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

// MaxReviewTextLen bounds the free-text portion of a review.
const MaxReviewTextLen = 2000

// SubmitResult reports whether Submit created a new review or updated the
// caller's existing one.
type SubmitResult struct {
	Review  store.Review `json:"review"`
	Created bool         `json:"created"`
}

type Service struct {
	Reviews store.ReviewStore
	Movies  store.MovieStore
	Users   store.UserStore
	Log     *zap.Logger
	Events  *analytics.Publisher
}

// Submit creates or updates the caller's review for a movie. A resubmission
// updates the existing row in place; it never duplicates. The movie's cached
// rating is recomputed before Submit returns.
func (s *Service) Submit(ctx context.Context, userID, movieID string, rating int, text string) (SubmitResult, error) {
	ok, err := s.Movies.MovieExists(ctx, movieID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		return SubmitResult{}, fmt.Errorf("%w: movie", store.ErrNotFound)
	}
	if rating < 1 || rating > 5 {
		return SubmitResult{}, fmt.Errorf("%w: rating must be between 1 and 5", store.ErrInvalidInput)
	}
	if len(text) > MaxReviewTextLen {
		return SubmitResult{}, fmt.Errorf("%w: review text exceeds %d characters", store.ErrInvalidInput, MaxReviewTextLen)
	}

	rev, created, err := s.Reviews.UpsertReview(ctx, userID, movieID, rating, text)
	if err != nil {
		// A failure here means the review write rolled back together with
		// the rating recompute; the projection never diverges silently.
		s.Log.Error("review submit failed",
			zap.String("user_id", userID),
			zap.String("movie_id", movieID),
			zap.Error(err))
		return SubmitResult{}, err
	}

	s.Events.Publish(analytics.SubjectReviewSubmitted, "review_submitted", userID, map[string]any{
		"movie_id": movieID,
		"rating":   rating,
		"created":  created,
	})
	return SubmitResult{Review: rev, Created: created}, nil
}

// Delete removes a review. Permitted for the review's owner and for admins;
// an admin removing someone else's review is recorded for audit.
func (s *Service) Delete(ctx context.Context, requesterID string, requesterIsAdmin bool, reviewID string) error {
	rev, err := s.Reviews.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != requesterID && !requesterIsAdmin {
		return fmt.Errorf("%w: not the review owner", store.ErrForbidden)
	}
	if rev.UserID != requesterID {
		s.Log.Info("review deleted by admin",
			zap.String("review_id", reviewID),
			zap.String("owner_id", rev.UserID),
			zap.String("admin_id", requesterID),
			zap.Bool("admin_override", true))
	}

	if err := s.Reviews.DeleteReview(ctx, reviewID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.Log.Error("review delete failed", zap.String("review_id", reviewID), zap.Error(err))
		}
		return err
	}

	s.Events.Publish(analytics.SubjectReviewDeleted, "review_deleted", requesterID, map[string]any{
		"review_id": reviewID,
		"movie_id":  rev.MovieID,
	})
	return nil
}

// ListByMovie returns a movie's reviews, newest first, with each reviewer's
// public identity attached.
func (s *Service) ListByMovie(ctx context.Context, movieID string, p store.Page) ([]store.ReviewWithAuthor, int, error) {
	ok, err := s.Movies.MovieExists(ctx, movieID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: movie", store.ErrNotFound)
	}
	return s.Reviews.ListMovieReviews(ctx, movieID, p)
}

// ListByUser returns a user's reviews, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, p store.Page) ([]store.Review, int, error) {
	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.Reviews.ListUserReviews(ctx, userID, p)
}
