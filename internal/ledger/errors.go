package ledger

import "errors"

var (
	// ErrInvalidTransfer occurs when a transfer names the same wallet on both
	// sides or an otherwise malformed wallet pair.
	ErrInvalidTransfer = errors.New("transfer endpoints must differ")

	// ErrUnauthorized occurs when the caller does not own a wallet the
	// operation requires them to own. It is detected before any lock is taken.
	ErrUnauthorized = errors.New("wallet not owned by caller")

	// ErrWalletNotFound occurs when a wallet id does not resolve to a row.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrLockNotAcquired is returned by store implementations when a row lock
	// could not be obtained in time or a deadlock was broken. The engine
	// treats it as retriable.
	ErrLockNotAcquired = errors.New("wallet lock not acquired")

	// ErrContention is surfaced to callers once the retry budget for lock
	// acquisition is exhausted.
	ErrContention = errors.New("wallet contention, retries exhausted")
)
