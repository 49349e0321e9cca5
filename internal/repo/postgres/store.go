package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBObserver times logical DB operations; *observability.Prom satisfies it.
type DBObserver interface {
	ObserveDB(op string, fn func() error) error
}

// Store is the Postgres implementation of the record store.
type Store struct {
	pool *pgxpool.Pool
	obs  DBObserver
}

func NewStore(pool *pgxpool.Pool, obs DBObserver) *Store {
	return &Store{pool: pool, obs: obs}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.obs != nil {
		return s.obs.ObserveDB(op, fn)
	}
	return fn()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
