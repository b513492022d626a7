package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// beginTx starts a write transaction with retry on SQLITE_BUSY.
//
// The connection string carries _txlock=immediate, so BeginTx issues
// BEGIN IMMEDIATE and contends for the write lock up front. When
// another process holds it, BeginTx fails busy rather than waiting, so
// we retry with exponential backoff before giving up.
func (s *Store) beginTx(ctx context.Context) (*sql.Tx, error) {
	if s.memConn != nil {
		s.memMu.Lock()
		tx, err := s.memConn.BeginTx(ctx, nil)
		s.memMu.Unlock()
		return tx, err
	}

	var tx *sql.Tx
	operation := func() error {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err == nil {
			return nil
		}
		if isBusyError(err) {
			return err // retryable
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// withTx runs fn inside a write transaction, committing on success and
// rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transaction", err)
	}
	committed = true
	return nil
}
