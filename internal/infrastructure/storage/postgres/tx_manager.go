package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facturago/internal/core/apperror"
	"facturago/internal/core/tx"
	"facturago/pkg/logger"
)

var tracer = otel.Tracer("facturago/tx")

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// pgErrSerializationFailure is the SQLSTATE Postgres raises when a
// SERIALIZABLE transaction cannot be proven serializable (40001).
const pgErrSerializationFailure = "40001"

// pgErrUniqueViolation is the SQLSTATE for unique constraint violations (23505).
const pgErrUniqueViolation = "23505"

// TxOptions configures transaction behavior.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout bounds every statement inside the transaction.
	StatementTimeout time.Duration
}

// DefaultTxOptions returns production-safe defaults.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// SerializableTxOptions for numbering-critical operations. The finalize
// path reads the set of assigned numbers and writes a new one; anything
// weaker than SERIALIZABLE admits two transactions picking the same number.
func SerializableTxOptions() TxOptions {
	opts := DefaultTxOptions()
	opts.IsolationLevel = pgx.Serializable
	return opts
}

// TxManager implements tx.Manager on a pgx pool. The open transaction
// travels in the context, so nested Run* calls join the outer transaction
// and repositories pick it up through GetQuerier without knowing whether
// one is open.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager over the shared pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

// RunInTransaction executes fn inside a READ COMMITTED transaction,
// committing on success and rolling back on error.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// RunSerializable executes fn in a SERIALIZABLE transaction. Callers must be
// prepared to retry: a serialization failure surfaces as a concurrent
// modification error.
func (m *TxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, SerializableTxOptions(), fn)
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// RunInTransactionWithOptions executes fn with explicit transaction options.
// When the context already carries a transaction it is joined as-is; a
// nested RunSerializable inside an already-serializable transaction is the
// common shape on the finalize path.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
		))
	defer span.End()

	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	pgxTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if opts.StatementTimeout > 0 {
		_, err = pgxTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = pgxTx.Rollback(ctx)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, pgxTx)); err != nil {
		// Roll back on a fresh context so it still runs when the
		// original context is already cancelled.
		if rbErr := pgxTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return TranslateError(err)
	}

	// Under SERIALIZABLE the conflict is often only detected at commit,
	// so commit errors go through the same translation.
	if err := pgxTx.Commit(ctx); err != nil {
		if translated := TranslateError(err); apperror.IsAppError(translated) {
			return translated
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	if t, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return t
	}
	return nil
}

// Querier is the subset of pgx operations repositories need. Both pgx.Tx
// and pgxpool.Pool satisfy it, so repos work inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context's transaction when one is open, the pool
// otherwise.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := txFromContext(ctx); t != nil {
		return t
	}
	return m.pool
}

// TranslateError maps low-level Postgres failures onto application errors
// the domain layer understands. Serialization failures and unique
// violations both mean "someone else got there first" on the numbering
// path, and both are retryable there.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrSerializationFailure:
		return apperror.NewConcurrentModification("transaction", pgErr.ConstraintName).WithCause(err)
	case pgErrUniqueViolation:
		return apperror.NewDuplicate("record", "constraint", pgErr.ConstraintName).WithCause(err)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != pgErrUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}