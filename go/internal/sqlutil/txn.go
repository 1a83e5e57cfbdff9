package sqlutil

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DefaultTxAttempts bounds how often a transaction is retried after a serialization
// failure or deadlock.
const DefaultTxAttempts = 3

// Run executes fn inside a *sql.Tx.
// If fn returns an error the tx rolls back, else it commits.
func Run[T any](
	ctx context.Context,
	db *sql.DB,
	newQueries func(*sql.Tx) *T,
	fn func(q *T) error,
) error {
	tx, err := db.BeginTx(ctx, nil) // BEGIN
	if err != nil {
		return err
	}
	q := newQueries(tx) // bind sqlc Queries to this tx
	if err := fn(q); err != nil {
		_ = tx.Rollback() // ROLLBACK
		return err
	}
	return tx.Commit() // COMMIT
}

// RunWithRetry is Run, re-executed from scratch when Postgres aborts the transaction
// with a serialization failure or deadlock. fn must not keep state between attempts.
func RunWithRetry[T any](
	ctx context.Context,
	db *sql.DB,
	attempts int,
	newQueries func(*sql.Tx) *T,
	fn func(q *T) error,
) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = Run(ctx, db, newQueries, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("transaction conflict, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
		}
	}
	return err
}

// IsRetryable reports serialization_failure (40001) and deadlock_detected (40P01).
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
