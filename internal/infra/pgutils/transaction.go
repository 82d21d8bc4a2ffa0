package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/stardust/internal/config"
	"github.com/fastprodman/stardust/internal/metrics"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrTxConflict is returned when a transaction kept failing with a
// serialization error or deadlock until the retry budget ran out.
var ErrTxConflict = errors.New("transaction conflict, retries exhausted")

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}
		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// WithRetryTx runs fn through WithTx and replays it from the start when the
// database reports a serialization failure or deadlock. fn must not keep
// state across attempts: every precondition is re-checked on replay.
func WithRetryTx(ctx context.Context, db *sql.DB, policy config.RetryConfig, fn func(*sql.Tx) error) error {
	attempts := max(1, policy.MaxAttempts)
	delay := policy.BaseDelay

	for attempt := 1; ; attempt++ {
		err := WithTx(ctx, db, fn)
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}

		if attempt >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrTxConflict, attempt, err)
		}

		metrics.RecordTxRetry()
		slog.Debug("retrying transaction", "attempt", attempt, "error", err)

		err = sleepWithContext(ctx, delay)
		if err != nil {
			return err
		}

		if delay < policy.MaxDelay {
			delay = min(delay*2, policy.MaxDelay)
		}
	}
}

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
