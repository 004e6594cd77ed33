package wallet

import "time"

// Wallet is a balance-holding account owned by exactly one user. The owner is
// fixed at creation; only the label is mutable metadata.
type Wallet struct {
	ID        string
	OwnerID   string
	Label     string
	Balance   int64
	CreatedAt time.Time
}

// Balance is a point-in-time unlocked read of a wallet's funds. It must never
// be used to pre-decide whether a mutation will succeed; the transaction
// engine re-validates under lock.
type Balance struct {
	WalletID string
	Amount   int64
	AsOf     time.Time
}
