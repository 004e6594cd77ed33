package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naira-ledger/naira_ledger/internal/money"
)

const defaultLockTimeout = 3 * time.Second

// PostgresWalletStore locks and mutates wallet rows in PostgreSQL. Row locks
// are taken with SELECT ... FOR UPDATE and bounded by a per-transaction
// lock_timeout so a contended operation fails fast instead of queueing
// indefinitely.
type PostgresWalletStore struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresWalletStore builds a Postgres-backed wallet store. A
// non-positive lockTimeout falls back to the default.
func NewPostgresWalletStore(db *pgxpool.Pool, lockTimeout time.Duration) *PostgresWalletStore {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &PostgresWalletStore{db: db, lockTimeout: lockTimeout}
}

// Begin opens a transaction and scopes its lock wait budget.
func (s *PostgresWalletStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	// lock_timeout is transaction-local; FOR UPDATE waits beyond it abort
	// with 55P03 and are reported as retriable lock failures.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set lock_timeout: %w", err)
	}

	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) LockWallet(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}

	row := t.tx.QueryRow(ctx, `SELECT id, owner_id, label, balance FROM wallets WHERE id = $1 FOR UPDATE`, walletID)

	var (
		idVal   uuid.UUID
		ownerID uuid.UUID
		wallet  Wallet
		balance int64
	)
	if err := row.Scan(&idVal, &ownerID, &wallet.Label, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		if isLockFailure(err) {
			return Wallet{}, fmt.Errorf("%w: %w", ErrLockNotAcquired, err)
		}
		return Wallet{}, fmt.Errorf("lock wallet %s: %w", id, err)
	}

	wallet.ID = idVal.String()
	wallet.OwnerID = ownerID.String()
	wallet.Balance = money.Money(balance)
	return wallet, nil
}

func (t *postgresTx) UpdateBalance(ctx context.Context, id string, balance money.Money) error {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return ErrWalletNotFound
	}

	cmd, err := t.tx.Exec(ctx, `UPDATE wallets SET balance = $2 WHERE id = $1`, walletID, balance.Int64())
	if err != nil {
		return fmt.Errorf("update balance %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (t *postgresTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if isLockFailure(err) {
			return fmt.Errorf("%w: %w", ErrLockNotAcquired, err)
		}
		return err
	}
	return nil
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// isLockFailure reports whether err is a lock wait timeout, broken deadlock
// or serialization failure, all of which warrant retrying the operation.
func isLockFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "55P03", "40P01", "40001":
		return true
	}
	return false
}
