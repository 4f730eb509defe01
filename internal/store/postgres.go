package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/ratings"
)

// PostgresStore is the production Postgres-backed implementation.
type PostgresStore struct {
	db  *pgxpool.Pool
	agg ratings.Aggregator
}

func NewPostgresStore(db *pgxpool.Pool, log *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, agg: ratings.Aggregator{Log: log}}
}

var _ Store = (*PostgresStore)(nil)

// parseID rejects ids that cannot reference any row. Callers get ErrNotFound
// rather than a cast error from Postgres.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, ErrNotFound
	}
	return u, nil
}

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

func isPgErr(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
