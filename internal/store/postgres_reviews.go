package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, user_id, movie_id, rating, review_text, created_at, updated_at`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Rating, &r.ReviewText, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// UpsertReview runs the review write and the rating recompute in one
// transaction. The movie row is locked first, which both validates the
// movie and serializes concurrent submissions for it, so the cached rating
// can never reflect a half-applied interleaving.
func (s *PostgresStore) UpsertReview(ctx context.Context, userID, movieID string, rating int, text string) (Review, bool, error) {
	uid, err := parseID(userID)
	if err != nil {
		return Review{}, false, err
	}
	mid, err := parseID(movieID)
	if err != nil {
		return Review{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Review{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, mid).Scan(&lockedID); err != nil {
		return Review{}, false, mapNoRows(err)
	}

	now := time.Now().UTC()
	var rev Review
	created := false

	var existingID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM reviews WHERE user_id = $1 AND movie_id = $2`, uid, mid,
	).Scan(&existingID)
	switch {
	case err == nil:
		rev, err = scanReview(tx.QueryRow(ctx, `
UPDATE reviews SET rating = $2, review_text = $3, updated_at = $4
WHERE id = $1
RETURNING `+reviewColumns, existingID, rating, text, now))
		if err != nil {
			return Review{}, false, err
		}
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		rev, err = scanReview(tx.QueryRow(ctx, `
INSERT INTO reviews (id, user_id, movie_id, rating, review_text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING `+reviewColumns, uuid.New(), uid, mid, rating, text, now))
		if err != nil {
			if isPgErr(err, pgUniqueViolation) {
				// backstop: constraint caught a concurrent insert the
				// lookup missed
				return Review{}, false, ErrAlreadyExists
			}
			return Review{}, false, err
		}
	default:
		return Review{}, false, err
	}

	if _, err := s.agg.Recompute(ctx, tx, movieID); err != nil {
		return Review{}, false, fmt.Errorf("recompute rating: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Review{}, false, err
	}
	return rev, created, nil
}

func (s *PostgresStore) GetReview(ctx context.Context, id string) (Review, error) {
	rid, err := parseID(id)
	if err != nil {
		return Review{}, err
	}
	r, err := scanReview(s.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, rid))
	if err != nil {
		return Review{}, mapNoRows(err)
	}
	return r, nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, id string) error {
	rid, err := parseID(id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var movieID string
	if err := tx.QueryRow(ctx,
		`SELECT movie_id FROM reviews WHERE id = $1`, rid,
	).Scan(&movieID); err != nil {
		return mapNoRows(err)
	}
	if _, err := tx.Exec(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, movieID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, rid); err != nil {
		return err
	}
	if _, err := s.agg.Recompute(ctx, tx, movieID); err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListMovieReviews(ctx context.Context, movieID string, p Page) ([]ReviewWithAuthor, int, error) {
	mid, err := parseID(movieID)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE movie_id = $1`, mid).Scan(&total); err != nil {
		return nil, 0, err
	}
	p = p.Normalize()
	rows, err := s.db.Query(ctx, `
SELECT r.id, r.user_id, r.movie_id, r.rating, r.review_text, r.created_at, r.updated_at,
       COALESCE(u.username, ''), COALESCE(u.profile_pic, '')
FROM reviews r
LEFT JOIN users u ON u.id = r.user_id
WHERE r.movie_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2 OFFSET $3`,
		mid, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ReviewWithAuthor
	for rows.Next() {
		var rw ReviewWithAuthor
		if err := rows.Scan(
			&rw.ID, &rw.UserID, &rw.MovieID, &rw.Rating, &rw.ReviewText, &rw.CreatedAt, &rw.UpdatedAt,
			&rw.Author.Username, &rw.Author.ProfilePic,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, rw)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) ListUserReviews(ctx context.Context, userID string, p Page) ([]Review, int, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = $1`, uid).Scan(&total); err != nil {
		return nil, 0, err
	}
	p = p.Normalize()
	rows, err := s.db.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		uid, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
