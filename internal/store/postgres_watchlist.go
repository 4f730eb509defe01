package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func (s *PostgresStore) AddWatchlistEntry(ctx context.Context, userID, movieID string) (WatchlistEntry, error) {
	uid, err := parseID(userID)
	if err != nil {
		return WatchlistEntry{}, err
	}
	mid, err := parseID(movieID)
	if err != nil {
		return WatchlistEntry{}, err
	}

	w := WatchlistEntry{ID: uuid.NewString(), UserID: userID, MovieID: movieID}
	err = s.db.QueryRow(ctx, `
INSERT INTO watchlist_entries (id, user_id, movie_id, added_at)
VALUES ($1, $2, $3, $4)
RETURNING added_at`,
		w.ID, uid, mid, time.Now().UTC(),
	).Scan(&w.AddedAt)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return WatchlistEntry{}, ErrAlreadyExists
		}
		if isPgErr(err, pgFKViolation) {
			// movie or user row gone
			return WatchlistEntry{}, ErrNotFound
		}
		return WatchlistEntry{}, err
	}
	return w, nil
}

func (s *PostgresStore) RemoveWatchlistEntry(ctx context.Context, userID, movieID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	mid, err := parseID(movieID)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM watchlist_entries WHERE user_id = $1 AND movie_id = $2`, uid, mid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) WatchlistContains(ctx context.Context, userID, movieID string) (bool, error) {
	uid, err := parseID(userID)
	if err != nil {
		return false, nil
	}
	mid, err := parseID(movieID)
	if err != nil {
		return false, nil
	}
	var ok bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist_entries WHERE user_id = $1 AND movie_id = $2)`,
		uid, mid,
	).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *PostgresStore) ListWatchlist(ctx context.Context, userID string, p Page) ([]WatchlistItem, int, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM watchlist_entries WHERE user_id = $1`, uid).Scan(&total); err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	rows, err := s.db.Query(ctx, `
SELECT m.id, m.title, m.genre, m.release_year, m.director, m.cast_members, m.synopsis,
       m.poster_url, m.cached_avg_rating, m.created_at, m.updated_at, w.added_at
FROM watchlist_entries w
JOIN movies m ON m.id = w.movie_id
WHERE w.user_id = $1
ORDER BY w.added_at DESC, m.id DESC
LIMIT $2 OFFSET $3`, uid, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []WatchlistItem
	for rows.Next() {
		var it WatchlistItem
		m := &it.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.ReleaseYear, &m.Director, &m.Cast,
			&m.Synopsis, &m.PosterURL, &m.CachedAvgRating, &m.CreatedAt, &m.UpdatedAt, &it.AddedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) GetWatchlistStats(ctx context.Context, userID string) (WatchlistStats, error) {
	uid, err := parseID(userID)
	if err != nil {
		return WatchlistStats{}, err
	}

	stats := WatchlistStats{Genres: make(map[string]int)}
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM watchlist_entries WHERE user_id = $1`, uid).Scan(&stats.TotalMovies); err != nil {
		return WatchlistStats{}, err
	}

	rows, err := s.db.Query(ctx, `
SELECT m.genre, COUNT(*)
FROM watchlist_entries w
JOIN movies m ON m.id = w.movie_id
WHERE w.user_id = $1 AND m.genre <> ''
GROUP BY m.genre`, uid)
	if err != nil {
		return WatchlistStats{}, err
	}
	for rows.Next() {
		var genre string
		var n int
		if err := rows.Scan(&genre, &n); err != nil {
			rows.Close()
			return WatchlistStats{}, err
		}
		stats.Genres[genre] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return WatchlistStats{}, err
	}

	recent, _, err := s.ListWatchlist(ctx, userID, Page{Page: 1, Limit: 5})
	if err != nil {
		return WatchlistStats{}, err
	}
	stats.RecentAdditions = recent
	return stats, nil
}
