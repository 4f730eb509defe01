package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const movieColumns = `id, title, genre, release_year, director, cast_members, synopsis, poster_url, cached_avg_rating, created_at, updated_at`

func scanMovie(row pgx.Row) (Movie, error) {
	var m Movie
	err := row.Scan(&m.ID, &m.Title, &m.Genre, &m.ReleaseYear, &m.Director, &m.Cast,
		&m.Synopsis, &m.PosterURL, &m.CachedAvgRating, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *PostgresStore) CreateMovie(ctx context.Context, in MovieInput) (Movie, error) {
	id := uuid.New()
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx, `
INSERT INTO movies (id, title, genre, release_year, director, cast_members, synopsis, poster_url, cached_avg_rating, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $9)
RETURNING `+movieColumns,
		id, in.Title, in.Genre, in.ReleaseYear, in.Director, in.Cast, in.Synopsis, in.PosterURL, now)
	return scanMovie(row)
}

func (s *PostgresStore) GetMovie(ctx context.Context, id string) (Movie, error) {
	mid, err := parseID(id)
	if err != nil {
		return Movie{}, err
	}
	m, err := scanMovie(s.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, mid))
	if err != nil {
		return Movie{}, mapNoRows(err)
	}
	return m, nil
}

func (s *PostgresStore) UpdateMovie(ctx context.Context, id string, in MovieInput) (Movie, error) {
	mid, err := parseID(id)
	if err != nil {
		return Movie{}, err
	}
	row := s.db.QueryRow(ctx, `
UPDATE movies
SET title = $2, genre = $3, release_year = $4, director = $5, cast_members = $6,
    synopsis = $7, poster_url = $8, updated_at = $9
WHERE id = $1
RETURNING `+movieColumns,
		mid, in.Title, in.Genre, in.ReleaseYear, in.Director, in.Cast, in.Synopsis, in.PosterURL, time.Now().UTC())
	m, err := scanMovie(row)
	if err != nil {
		return Movie{}, mapNoRows(err)
	}
	return m, nil
}

func (s *PostgresStore) DeleteMovie(ctx context.Context, id string) error {
	mid, err := parseID(id)
	if err != nil {
		return err
	}
	// reviews and watchlist rows go with the movie via FK cascade
	tag, err := s.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, mid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMovies(ctx context.Context, f MovieFilter) ([]Movie, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if v := strings.TrimSpace(f.Search); v != "" {
		args = append(args, "%"+v+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(title ILIKE $"+n+" OR director ILIKE $"+n+" OR cast_members ILIKE $"+n+")")
	}
	if v := strings.TrimSpace(f.Genre); v != "" {
		args = append(args, "%"+v+"%")
		where = append(where, "genre ILIKE $"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := sortColumn(f.SortBy)
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	p := f.Page.Normalize()
	args = append(args, p.Limit, p.Offset())
	q := `SELECT ` + movieColumns + ` FROM movies WHERE ` + cond +
		` ORDER BY ` + order + ` ` + dir + `, id ASC` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// sortColumn maps the caller's sort key onto a real column; anything
// unrecognized falls back to created_at so no user input reaches the query.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "title", "release_year":
		return sortBy
	case "avg_rating":
		return "cached_avg_rating"
	default:
		return "created_at"
	}
}

func (s *PostgresStore) MovieExists(ctx context.Context, id string) (bool, error) {
	mid, err := parseID(id)
	if err != nil {
		return false, nil
	}
	var ok bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, mid).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *PostgresStore) MovieReviewStats(ctx context.Context, since time.Time) ([]MovieStats, error) {
	rows, err := s.db.Query(ctx, `
SELECT m.id, m.title, m.genre, m.release_year, m.director, m.cast_members, m.synopsis,
       m.poster_url, m.cached_avg_rating, m.created_at, m.updated_at,
       COALESCE(AVG(r.rating), 0),
       COUNT(r.id),
       COALESCE(AVG(r.rating) FILTER (WHERE r.created_at >= $1), 0),
       COUNT(r.id) FILTER (WHERE r.created_at >= $1)
FROM movies m
LEFT JOIN reviews r ON r.movie_id = m.id
GROUP BY m.id
ORDER BY m.id`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MovieStats
	for rows.Next() {
		var st MovieStats
		m := &st.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.ReleaseYear, &m.Director, &m.Cast,
			&m.Synopsis, &m.PosterURL, &m.CachedAvgRating, &m.CreatedAt, &m.UpdatedAt,
			&st.AvgRating, &st.ReviewCount, &st.WindowAvgRating, &st.WindowReviewCount); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
