package ledger

import (
	"context"

	"github.com/naira-ledger/naira_ledger/internal/money"
)

// Wallet is the engine's view of a wallet row: identity, ownership and the
// balance it mutates. Display metadata lives with the wallet repository and is
// never touched here.
type Wallet struct {
	ID      string
	OwnerID string
	Label   string
	Balance money.Money
}

// WalletStore provides transactional, exclusively-locked access to wallet
// rows. Implementations must guarantee that LockWallet blocks concurrent
// lockers of the same id until the holding transaction commits or rolls back.
type WalletStore interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single unit of work against one or two wallet rows. Either Commit
// or Rollback must be called on every path; Rollback after Commit is a no-op.
type Tx interface {
	// LockWallet acquires the exclusive row lock for id and returns the
	// current record. It fails with ErrWalletNotFound if the id does not
	// resolve, or wraps ErrLockNotAcquired when the lock wait times out or a
	// deadlock is broken.
	LockWallet(ctx context.Context, id string) (Wallet, error)

	// UpdateBalance stages the new balance for a wallet locked by this
	// transaction. The write becomes visible only on Commit.
	UpdateBalance(ctx context.Context, id string, balance money.Money) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// OwnershipAuthority answers whether a caller owns a wallet. The engine
// consults it before taking any lock.
type OwnershipAuthority interface {
	Owns(ctx context.Context, ownerID, walletID string) (bool, error)
}
