package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/naira-ledger/naira_ledger/internal/money"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 50 * time.Millisecond
)

// Engine performs the four balance-mutating ledger operations as indivisible
// units of work. It holds no mutable state of its own; isolation comes from
// the WalletStore's per-row locks, scoped to one operation's lifetime.
type Engine struct {
	store     WalletStore
	authority OwnershipAuthority
	logger    *slog.Logger

	// MaxAttempts bounds how often an operation is retried after a lock
	// timeout or broken deadlock before ErrContention is surfaced.
	MaxAttempts int
	// RetryDelay is the base backoff between attempts, doubled per retry.
	RetryDelay time.Duration
}

// NewEngine wires an engine to its store and ownership authority.
func NewEngine(store WalletStore, authority OwnershipAuthority, logger *slog.Logger) *Engine {
	return &Engine{
		store:       store,
		authority:   authority,
		logger:      logger,
		MaxAttempts: defaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
	}
}

// DepositRequest credits a single wallet owned by the caller.
type DepositRequest struct {
	WalletID string
	OwnerID  string
	Amount   int64
}

// WithdrawRequest debits a single wallet owned by the caller.
type WithdrawRequest struct {
	WalletID string
	OwnerID  string
	Amount   int64
}

// WalletTransferRequest moves funds between two wallets of the same owner.
type WalletTransferRequest struct {
	OwnerID      string
	FromWalletID string
	ToWalletID   string
	Amount       int64
}

// UserTransferRequest moves funds from the caller's wallet to another user's
// wallet. The destination owner is supplied by the caller and checked against
// the destination wallet, never re-derived.
type UserTransferRequest struct {
	OwnerID      string
	FromWalletID string
	ToOwnerID    string
	ToWalletID   string
	Amount       int64
}

// TransferResult carries the post-commit snapshots of both wallets.
type TransferResult struct {
	From Wallet
	To   Wallet
}

// Deposit credits the wallet. Once the caller is authorized and the wallet
// exists, only overflow can fail it.
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (Wallet, error) {
	amount, err := money.NewAmount(req.Amount)
	if err != nil {
		return Wallet{}, err
	}
	return e.mutateOne(ctx, "deposit", req.OwnerID, req.WalletID, func(balance money.Money) (money.Money, error) {
		return balance.Add(amount)
	})
}

// Withdraw debits the wallet, failing with money.ErrInsufficientFunds when the
// amount exceeds the locked balance.
func (e *Engine) Withdraw(ctx context.Context, req WithdrawRequest) (Wallet, error) {
	amount, err := money.NewAmount(req.Amount)
	if err != nil {
		return Wallet{}, err
	}
	return e.mutateOne(ctx, "withdraw", req.OwnerID, req.WalletID, func(balance money.Money) (money.Money, error) {
		return balance.Sub(amount)
	})
}

// TransferWalletToWallet moves funds between two wallets of the same caller.
// Both endpoints must be owned by the caller.
func (e *Engine) TransferWalletToWallet(ctx context.Context, req WalletTransferRequest) (TransferResult, error) {
	amount, err := money.NewAmount(req.Amount)
	if err != nil {
		return TransferResult{}, err
	}
	if req.FromWalletID == req.ToWalletID {
		return TransferResult{}, ErrInvalidTransfer
	}
	return e.transfer(ctx, "wallet_transfer", transferSpec{
		fromOwnerID:  req.OwnerID,
		fromWalletID: req.FromWalletID,
		toOwnerID:    req.OwnerID,
		toWalletID:   req.ToWalletID,
		amount:       amount,
	})
}

// TransferWalletToUser moves funds from the caller's wallet into a wallet
// owned by the target user named in the request.
func (e *Engine) TransferWalletToUser(ctx context.Context, req UserTransferRequest) (TransferResult, error) {
	amount, err := money.NewAmount(req.Amount)
	if err != nil {
		return TransferResult{}, err
	}
	if req.FromWalletID == req.ToWalletID {
		return TransferResult{}, ErrInvalidTransfer
	}
	return e.transfer(ctx, "user_transfer", transferSpec{
		fromOwnerID:  req.OwnerID,
		fromWalletID: req.FromWalletID,
		toOwnerID:    req.ToOwnerID,
		toWalletID:   req.ToWalletID,
		amount:       amount,
	})
}

type transferSpec struct {
	fromOwnerID  string
	fromWalletID string
	toOwnerID    string
	toWalletID   string
	amount       money.Money
}

func (e *Engine) mutateOne(ctx context.Context, op, ownerID, walletID string, apply func(money.Money) (money.Money, error)) (Wallet, error) {
	var snapshot Wallet
	err := e.withRetry(ctx, op, func(ctx context.Context) error {
		if err := e.authorize(ctx, ownerID, walletID); err != nil {
			return err
		}

		tx, err := e.store.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx) // nolint:errcheck

		wallet, err := tx.LockWallet(ctx, walletID)
		if err != nil {
			return err
		}

		balance, err := apply(wallet.Balance)
		if err != nil {
			return err
		}

		if err := tx.UpdateBalance(ctx, walletID, balance); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		wallet.Balance = balance
		snapshot = wallet
		return nil
	})
	if err != nil {
		return Wallet{}, err
	}
	return snapshot, nil
}

func (e *Engine) transfer(ctx context.Context, op string, spec transferSpec) (TransferResult, error) {
	var result TransferResult
	err := e.withRetry(ctx, op, func(ctx context.Context) error {
		if err := e.authorize(ctx, spec.fromOwnerID, spec.fromWalletID); err != nil {
			return err
		}
		if err := e.authorize(ctx, spec.toOwnerID, spec.toWalletID); err != nil {
			return err
		}

		tx, err := e.store.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx) // nolint:errcheck

		// Locks are always taken in ascending wallet-id order, independent of
		// which side is the source. Two transfers touching the same pair in
		// opposite directions therefore never deadlock.
		firstID, secondID := spec.fromWalletID, spec.toWalletID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		first, err := tx.LockWallet(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := tx.LockWallet(ctx, secondID)
		if err != nil {
			return err
		}

		from, to := first, second
		if from.ID != spec.fromWalletID {
			from, to = second, first
		}

		fromBalance, err := from.Balance.Sub(spec.amount)
		if err != nil {
			return err
		}
		toBalance, err := to.Balance.Add(spec.amount)
		if err != nil {
			return err
		}

		if err := tx.UpdateBalance(ctx, from.ID, fromBalance); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, to.ID, toBalance); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}

		from.Balance = fromBalance
		to.Balance = toBalance
		result = TransferResult{From: from, To: to}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	return result, nil
}

func (e *Engine) authorize(ctx context.Context, ownerID, walletID string) error {
	owns, err := e.authority.Owns(ctx, ownerID, walletID)
	if err != nil {
		return err
	}
	if !owns {
		return ErrUnauthorized
	}
	return nil
}

// withRetry runs fn, repeating the whole operation (re-validate, re-authorize,
// re-lock) when the store reports a lock failure. Non-retriable failures
// propagate verbatim.
func (e *Engine) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := e.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := e.RetryDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return err
		}

		e.logger.Warn("ledger operation contended",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContention, ctx.Err())
		}
		delay *= 2
	}

	return fmt.Errorf("%w: %w", ErrContention, err)
}
