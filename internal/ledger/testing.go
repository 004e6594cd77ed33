package ledger

import "github.com/naira-ledger/naira_ledger/internal/money"

// SeedWallet is a test helper that installs or resets a wallet row in an
// in-memory store.
func SeedWallet(store *MemoryWalletStore, id, ownerID string, balance int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.wallets[id] = Wallet{ID: id, OwnerID: ownerID, Balance: money.Money(balance)}
}
