package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// serializationFailure is the Postgres SQLSTATE for a serialization conflict.
const serializationFailure = "40001"

// TxBeginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TransactionFunc is a function that executes within a database transaction
type TransactionFunc func(tx pgx.Tx) error

// WithTransaction executes fn within a database transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
func WithTransaction(ctx context.Context, conn TxBeginner, fn TransactionFunc) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		// After a commit, rollback returns ErrTxClosed.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logger.Log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(tx); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithTransactionRetry retries WithTransaction up to maxRetries times on
// serialization failures.
func WithTransactionRetry(ctx context.Context, conn TxBeginner, maxRetries int, fn TransactionFunc) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = WithTransaction(ctx, conn, fn)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == serializationFailure && attempt < maxRetries {
			logger.Log.Warn("Transaction failed due to serialization error, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", maxRetries),
				zap.Error(err),
			)
			continue
		}
		break
	}
	return err
}

// TxRunner runs a unit of work against a Querier bound to one transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// PoolTxRunner is the TxRunner backed by a connection pool.
type PoolTxRunner struct {
	conn       TxBeginner
	maxRetries int
}

// NewTxRunner creates a TxRunner that retries serialization failures.
func NewTxRunner(conn TxBeginner, maxRetries int) *PoolTxRunner {
	return &PoolTxRunner{conn: conn, maxRetries: maxRetries}
}

func (r *PoolTxRunner) InTx(ctx context.Context, fn func(q Querier) error) error {
	return WithTransactionRetry(ctx, r.conn, r.maxRetries, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}
