// Package ratings owns the movie rating aggregation: the arithmetic that
// turns a review set into the cached average on the movie row, and the
// recompute path used by the Postgres store. The cached column has exactly
// one writer, this package.
package ratings

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Average returns the mean of the ratings rounded to two decimal places,
// 0 for an empty set. Never NaN.
func Average(rs []int) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r
	}
	return Round2(float64(sum) / float64(len(rs)))
}

// Querier is the execution surface Recompute needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the recompute can run standalone or inside the
// transaction that mutated the review set.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Aggregator recomputes movies.cached_avg_rating from the review corpus.
type Aggregator struct {
	Log *zap.Logger
}

// Recompute reads the current reviews for movieID, averages their ratings
// and writes the rounded value to the movie row. Returns the written value.
// A movie deleted in the same operation is a no-op, not an error.
func (a Aggregator) Recompute(ctx context.Context, q Querier, movieID string) (float64, error) {
	var sum, count int
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM reviews WHERE movie_id = $1`,
		movieID,
	).Scan(&sum, &count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	avg := 0.0
	if count > 0 {
		avg = Round2(float64(sum) / float64(count))
	}

	tag, err := q.Exec(ctx,
		`UPDATE movies SET cached_avg_rating = $2 WHERE id = $1`,
		movieID, avg,
	)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 && a.Log != nil {
		// Movie vanished between the review mutation and the recompute;
		// only possible when the movie itself was deleted.
		a.Log.Debug("rating recompute skipped, movie gone", zap.String("movie_id", movieID))
	}
	return avg, nil
}
